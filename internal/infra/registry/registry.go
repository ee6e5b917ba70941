package registry

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/go-json-experiment/json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/windy-civi/govsync/internal/domain"
)

// Config is the registry document shape. The built-in document can be
// overlaid with an RFC 7386 merge patch to point at a different host or
// org, or to add locales ahead of a release.
type Config struct {
	Host    string   `json:"host"`
	Org     string   `json:"org"`
	Locales []string `json:"locales"`
}

type Registry struct {
	host    string
	org     string
	locales []domain.LocaleCode
}

func Load() (*Registry, error) {
	return LoadWithOverlay("")
}

// LoadWithOverlay builds the registry from the built-in document, merge
// patched with the file at patchPath when given, and validated against the
// registry schema before use.
func LoadWithOverlay(patchPath string) (*Registry, error) {
	doc := builtinConfig
	if strings.TrimSpace(patchPath) != "" {
		patch, err := os.ReadFile(patchPath)
		if err != nil {
			return nil, fmt.Errorf("read registry patch: %w", err)
		}
		merged, err := jsonpatch.MergePatch(doc, patch)
		if err != nil {
			return nil, fmt.Errorf("apply registry patch: %w", err)
		}
		doc = merged
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	reg := &Registry{host: cfg.Host, org: cfg.Org}
	for _, raw := range cfg.Locales {
		locale := domain.ParseLocale(raw)
		if locale == "" {
			continue
		}
		reg.locales = append(reg.locales, locale)
	}
	return reg, nil
}

// Known returns every locale in the registry, in registry order.
func (r *Registry) Known() []domain.LocaleCode {
	out := make([]domain.LocaleCode, len(r.locales))
	copy(out, r.locales)
	return out
}

// RemoteURL maps any locale, known or not, onto the fixed clone URL
// template. Unknown locales fail naturally against the remote.
func (r *Registry) RemoteURL(locale domain.LocaleCode) string {
	return fmt.Sprintf("https://%s/%s/%s.git", r.host, r.org, locale.DirName())
}

func validate(doc []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("registry.json", strings.NewReader(configSchema)); err != nil {
		return fmt.Errorf("load registry schema: %w", err)
	}
	sch, err := compiler.Compile("registry.json")
	if err != nil {
		return fmt.Errorf("compile registry schema: %w", err)
	}

	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("parse registry: %w", err)
	}
	if err := sch.Validate(value); err != nil {
		return fmt.Errorf("invalid registry: %w", err)
	}
	return nil
}
