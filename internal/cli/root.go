package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/windy-civi/govsync/internal/platform"
)

type RootOptions struct {
	JSONOutput bool
	LogLevel   string
	LogFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		LogLevel:  envDefault("GOVSYNC_LOG_LEVEL", "info"),
		LogFormat: envDefault("GOVSYNC_LOG_FORMAT", "text"),
	}
	cmd := &cobra.Command{
		Use:           "govsync",
		Short:         "Mirror windy-civi legislative data repositories",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_, err := platform.ConfigureLogger(opts.LogLevel, opts.LogFormat, cmd.ErrOrStderr())
			return err
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")

	cmd.AddCommand(
		newSyncCmd(opts),
		newDeleteCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// defaultMirrorRoot places mirrors under GOVSYNC_DIR when set, otherwise
// under the invoking user's home directory.
func defaultMirrorRoot() string {
	if dir := strings.TrimSpace(os.Getenv("GOVSYNC_DIR")); dir != "" {
		return filepath.Join(dir, "repos")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".govsync", "repos")
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envIntDefault(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
