// Package appshell is the process boundary shared by hicat binaries:
// signal handling, argv and exit status.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// CancelledExit is the status of a run stopped by SIGINT or SIGTERM.
const CancelledExit = 130

// Main runs run with a context cancelled on SIGINT/SIGTERM and exits with
// its status.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	os.Exit(execute(run, os.Args[1:], os.Stdout, os.Stderr))
}

func execute(run func(context.Context, []string, io.Writer, io.Writer) int, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, argv, stdout, stderr)
	// A run interrupted after its last check still counts as cancelled.
	if ctx.Err() != nil && code == 0 {
		code = CancelledExit
	}
	return code
}
