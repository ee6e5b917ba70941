package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/windy-civi/govsync/internal/domain"
)

type fakeRegistry struct {
	known []domain.LocaleCode
}

func (f *fakeRegistry) Known() []domain.LocaleCode {
	return f.known
}

func (f *fakeRegistry) RemoteURL(locale domain.LocaleCode) string {
	return fmt.Sprintf("https://github.com/windy-civi-pipelines/%s.git", locale.DirName())
}

func newService() *Service {
	return NewService(&fakeRegistry{known: []domain.LocaleCode{"usa", "il", "vt"}})
}

func TestExpandRequiresMirrorRoot(t *testing.T) {
	_, err := newService().Expand([]string{"il"}, " ")
	if !errors.Is(err, ErrMirrorRootRequired) {
		t.Fatalf("expected ErrMirrorRootRequired, got %v", err)
	}
}

func TestExpandExplicitLocales(t *testing.T) {
	root := t.TempDir()
	refs, err := newService().Expand([]string{" IL ", "vt"}, root)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected two refs, got %d", len(refs))
	}
	if refs[0].Locale != "il" || refs[1].Locale != "vt" {
		t.Fatalf("unexpected locales: %+v", refs)
	}
	if refs[0].RemoteURL != "https://github.com/windy-civi-pipelines/il-data-pipeline.git" {
		t.Fatalf("unexpected remote: %s", refs[0].RemoteURL)
	}
	if refs[0].LocalPath != filepath.Join(root, "il-data-pipeline") {
		t.Fatalf("unexpected local path: %s", refs[0].LocalPath)
	}
}

func TestExpandAllUsesRegistry(t *testing.T) {
	refs, err := newService().Expand([]string{"all"}, t.TempDir())
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected three refs, got %d", len(refs))
	}
	if refs[0].Locale != "usa" || refs[2].Locale != "vt" {
		t.Fatalf("unexpected order: %+v", refs)
	}
}

func TestExpandDeduplicates(t *testing.T) {
	refs, err := newService().Expand([]string{"il", "all", "il"}, t.TempDir())
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected three unique refs, got %d", len(refs))
	}
	// Explicit mention wins the position.
	if refs[0].Locale != "il" || refs[1].Locale != "usa" {
		t.Fatalf("unexpected order: %+v", refs)
	}
}

func TestExpandPassesUnknownLocaleThrough(t *testing.T) {
	refs, err := newService().Expand([]string{"zz"}, t.TempDir())
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 1 || refs[0].Locale != "zz" {
		t.Fatalf("expected pass-through ref, got %+v", refs)
	}
}

func TestExpandZeroArgsDiscoversExistingMirrors(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{
		filepath.Join(root, "il-data-pipeline", ".git"),
		filepath.Join(root, "vt-data-pipeline", ".git"),
		filepath.Join(root, "not-a-mirror"),
		filepath.Join(root, "ak-data-pipeline"), // no .git, skipped
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	refs, err := newService().Expand(nil, root)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected two discovered refs, got %+v", refs)
	}
	if refs[0].Locale != "il" || refs[1].Locale != "vt" {
		t.Fatalf("unexpected discovery: %+v", refs)
	}
}

func TestExpandZeroArgsMissingRootIsEmpty(t *testing.T) {
	refs, err := newService().Expand(nil, filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected empty fleet, got %+v", refs)
	}
}

func TestExpandBlankArgsAreIgnored(t *testing.T) {
	refs, err := newService().Expand([]string{" ", "il"}, t.TempDir())
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(refs) != 1 || refs[0].Locale != "il" {
		t.Fatalf("expected single ref, got %+v", refs)
	}
}
