package main

import (
	"os"

	"github.com/windy-civi/govsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
