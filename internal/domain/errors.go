package domain

import "errors"

// ErrDiverged marks a mirror whose history requires a true three-way
// merge. It is always surfaced, never auto-resolved: the mirror must stay
// a faithful copy of upstream history.
var ErrDiverged = errors.New("mirror has diverged from upstream; manual resolution required")

// ErrMirrorCorrupt marks local state that cannot be reconciled with the
// remote (missing objects, no common ancestor, unopenable repository).
// The sync engine recovers from it once via delete-and-reclone.
var ErrMirrorCorrupt = errors.New("local mirror is corrupt")

// ErrNoDefaultBranch is returned when neither of the conventional default
// branch names exists locally or on the remote.
var ErrNoDefaultBranch = errors.New("neither 'main' nor 'master' branch found")
