// File: cmd/stackreplay/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/xkilldash9x/stack-replayer/cmd"
)

// osExit is replaced in tests.
var osExit = os.Exit

func main() {
	osExit(run(os.Args[1:]))
}

// run executes the CLI and maps the outcome to a process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, args); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		return 1
	}
	return 0
}
