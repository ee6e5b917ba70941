package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/windy-civi/govsync/internal/domain"
)

// Service turns CLI selections into concrete repository refs. Selection
// semantics: explicit codes pass through even when unknown to the
// registry, "all" expands to every known locale, and an empty selection
// means "whatever mirrors already exist on disk".
type Service struct {
	registry Registry
}

func NewService(registry Registry) *Service {
	return &Service{registry: registry}
}

// Expand resolves the selection to a deduplicated, ordered list of refs.
// Order follows the input; "all" contributes locales in registry order;
// the zero-arg discovery contributes locales in directory-listing order.
func (s *Service) Expand(args []string, mirrorRoot string) ([]domain.RepositoryRef, error) {
	if strings.TrimSpace(mirrorRoot) == "" {
		return nil, ErrMirrorRootRequired
	}

	locales, err := s.selectLocales(args, mirrorRoot)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.LocaleCode]struct{}, len(locales))
	refs := make([]domain.RepositoryRef, 0, len(locales))
	for _, locale := range locales {
		if _, dup := seen[locale]; dup {
			continue
		}
		seen[locale] = struct{}{}
		refs = append(refs, domain.NewRepositoryRef(locale, s.registry.RemoteURL(locale), mirrorRoot))
	}
	return refs, nil
}

func (s *Service) selectLocales(args []string, mirrorRoot string) ([]domain.LocaleCode, error) {
	var locales []domain.LocaleCode
	explicit := false
	for _, arg := range args {
		locale := domain.ParseLocale(arg)
		if locale == "" {
			continue
		}
		explicit = true
		if locale == domain.LocaleAll {
			locales = append(locales, s.registry.Known()...)
			continue
		}
		locales = append(locales, locale)
	}
	if explicit {
		return locales, nil
	}
	return discoverMirrors(mirrorRoot)
}

// discoverMirrors lists locales that already have a mirror directory under
// the root. A missing root is an empty fleet, not an error.
func discoverMirrors(mirrorRoot string) ([]domain.LocaleCode, error) {
	entries, err := os.ReadDir(mirrorRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan mirror root: %w", err)
	}

	var locales []domain.LocaleCode
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale, ok := domain.LocaleFromDirName(entry.Name())
		if !ok {
			continue
		}
		// Only directories that look like git mirrors count; a bare
		// leftover directory is picked up by the corruption path once
		// the locale is selected explicitly.
		if _, err := os.Stat(filepath.Join(mirrorRoot, entry.Name(), ".git")); err != nil {
			continue
		}
		locales = append(locales, locale)
	}
	return locales, nil
}
