package gitmirror

// Store adapts go-git to the sync engine's mirror port. Every mirror is an
// ordinary working tree on the resolved default branch; the Store is the
// sole writer to any mirror path it is handed.

const (
	remoteName = "origin"

	// Default clone depth. Bounded so clones stay cheap, but deep enough
	// that a later merge-base computation has a usable ancestor window.
	defaultCloneDepth = 50

	// Per pack protocol, a deepen of 2^31-1 means "the full history".
	// Used to unshallow a truncated mirror before pulling.
	unshallowDepth = 2147483647
)

var defaultBranches = [2]string{"main", "master"}

type Store struct {
	options StoreOptions
}

type StoreOptions struct {
	// Token is presented as HTTP basic credentials. When empty, the
	// conventional environment variables are consulted instead.
	Token string
	// Username for basic auth; defaults to the fixed token username.
	Username string
	// Depth bounds clone history; <= 0 selects the default.
	Depth int
}

func NewStore() *Store {
	return &Store{}
}

func NewStoreWithOptions(options StoreOptions) *Store {
	return &Store{options: options}
}

func (s *Store) depth() int {
	if s.options.Depth > 0 {
		return s.options.Depth
	}
	return defaultCloneDepth
}
