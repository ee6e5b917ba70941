package main

import (
	"context"
	"fmt"
	"os"

	"github.com/windy-civi/govsync/pkg/govsync"
)

func main() {
	mirrorRoot := os.Getenv("GOVSYNC_MIRROR_ROOT")
	if mirrorRoot == "" {
		fmt.Fprintln(os.Stderr, "GOVSYNC_MIRROR_ROOT is required (directory for the mirrors)")
		os.Exit(1)
	}

	client, err := govsync.New(govsync.Config{
		MirrorRoot:    mirrorRoot,
		Jobs:          4,
		RecordHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "new client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	summary, err := client.Sync(ctx, "il", "usa")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sync: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("run %s: %d synced (%d cloned, %d pulled, %d up to date, %d recloned)\n",
		summary.RunID, summary.Total, summary.Cloned, summary.Pulled, summary.NoUpdates, summary.Recloned)
	for _, failure := range summary.Failures {
		fmt.Fprintf(os.Stderr, "failed %s: %s\n", failure.Locale, failure.Reason)
	}
	if summary.Failed() {
		os.Exit(1)
	}
}
