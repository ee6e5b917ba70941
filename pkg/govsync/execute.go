package govsync

import "github.com/windy-civi/govsync/internal/cli"

// Execute runs the govsync CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
