package govsync

import (
	"errors"
	"strings"
)

// Config defines embedded sync behavior for direct core access.
type Config struct {
	// MirrorRoot is the directory that holds the local mirrors.
	MirrorRoot string
	// Token authenticates against the git host. When empty the
	// conventional environment variables are consulted.
	Token string
	// Jobs bounds how many repositories sync concurrently; <= 0 selects
	// the default.
	Jobs int
	// RegistryPatch is an optional path to a JSON merge patch applied
	// over the built-in locale registry.
	RegistryPatch string
	// RecordHistory persists each run in the history ledger under the
	// mirror root.
	RecordHistory bool
}

var ErrMirrorRootRequired = errors.New("mirror root required")

func normalizeConfig(cfg Config) (Config, error) {
	if strings.TrimSpace(cfg.MirrorRoot) == "" {
		return cfg, ErrMirrorRootRequired
	}
	return cfg, nil
}
