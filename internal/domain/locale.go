package domain

import (
	"path/filepath"
	"strings"
)

// LocaleCode identifies one jurisdiction's data-pipeline repository. It is
// an opaque key: the resolver passes unrecognized codes through so a new
// jurisdiction can be synced before it lands in the built-in registry.
type LocaleCode string

// RepoSuffix is appended to a locale code to form both the remote
// repository name and the local mirror directory name.
const RepoSuffix = "-data-pipeline"

// LocaleAll is the selection token that expands to every known locale.
const LocaleAll = "all"

func ParseLocale(value string) LocaleCode {
	return LocaleCode(strings.ToLower(strings.TrimSpace(value)))
}

func (l LocaleCode) String() string {
	return string(l)
}

// DirName returns the mirror directory name for the locale. The mapping
// depends only on the locale, never on time or prior state.
func (l LocaleCode) DirName() string {
	return string(l) + RepoSuffix
}

// LocaleFromDirName inverts DirName. The second return is false when the
// directory name does not follow the mirror naming convention.
func LocaleFromDirName(name string) (LocaleCode, bool) {
	trimmed, ok := strings.CutSuffix(name, RepoSuffix)
	if !ok || trimmed == "" {
		return "", false
	}
	return LocaleCode(trimmed), true
}

// RepositoryRef ties a locale to its remote URL and local mirror path.
// Values are constructed fresh from configuration on every invocation and
// never persisted.
type RepositoryRef struct {
	Locale    LocaleCode
	RemoteURL string
	LocalPath string
}

// NewRepositoryRef derives the ref for a locale under the given mirror
// root. Re-deriving is idempotent; distinct locales never collide.
func NewRepositoryRef(locale LocaleCode, remoteURL, mirrorRoot string) RepositoryRef {
	return RepositoryRef{
		Locale:    locale,
		RemoteURL: remoteURL,
		LocalPath: filepath.Join(mirrorRoot, locale.DirName()),
	}
}
