package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the root command and maps any failure onto the exit code
// taxonomy. Errors are rendered once, here, so subcommands only return them.
func Execute() int {
	root := newRootCmd()
	err := root.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	exitErr := NormalizeError(err)
	_ = writeCLIError(root.ErrOrStderr(), exitErr, jsonRequested(root))
	return exitErr.Code
}

// jsonRequested reads the persistent --json flag directly off the root
// command; it is the only place error rendering needs flag state.
func jsonRequested(root *cobra.Command) bool {
	flags := root.PersistentFlags()
	if flags.Lookup("json") == nil {
		return false
	}
	asJSON, err := flags.GetBool("json")
	return err == nil && asJSON
}
