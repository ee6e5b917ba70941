package removal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// Remover deletes directory trees that contain git metadata. Object files
// are written read-only and some platforms release file handles lazily,
// so a single os.RemoveAll is not reliable enough for the reclone
// recovery path, which must never leave a half-removed directory behind.
type Remover struct {
	policy Policy
}

// Policy expresses the retry/backoff/fallback ladder so it can be tuned
// and unit-tested without touching the removal loop.
type Policy struct {
	MaxAttempts   int
	Delay         time.Duration
	ShellFallback bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   3,
		Delay:         150 * time.Millisecond,
		ShellFallback: true,
	}
}

func New() *Remover {
	return NewWithPolicy(DefaultPolicy())
}

func NewWithPolicy(policy Policy) *Remover {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Remover{policy: policy}
}

// Remove deletes path recursively. On return either the path no longer
// exists or the error explains why. Children are removed before parents;
// permissions are relaxed up front so read-only object files cannot block
// the sweep.
func (r *Remover) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	relaxPermissions(path)

	var lastErr error
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 && r.policy.Delay > 0 {
			timer := time.NewTimer(r.policy.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = os.RemoveAll(path)
		if lastErr == nil {
			return nil
		}
		// A failed sweep can strand entries created read-only mid-walk.
		relaxPermissions(path)
	}

	if r.policy.ShellFallback {
		if err := shellRemove(ctx, path); err == nil {
			return nil
		}
	}

	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("remove %s: %w", path, lastErr)
}

// relaxPermissions makes every entry writable and every directory
// traversable. Best effort: entries that cannot be chmodded are left for
// the removal attempts to report.
func relaxPermissions(path string) {
	_ = filepath.WalkDir(path, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			_ = os.Chmod(p, 0o755)
		} else if entry.Type().IsRegular() {
			_ = os.Chmod(p, 0o644)
		}
		return nil
	})
}

func shellRemove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/c", "rd", "/s", "/q", path)
	} else {
		cmd = exec.CommandContext(ctx, "rm", "-rf", "--", path)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell remove: %w", err)
	}
	if _, err := os.Lstat(path); !errors.Is(err, os.ErrNotExist) {
		return errors.New("shell remove left path behind")
	}
	return nil
}
