package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/kappal-app/awx-local/pkg/notify"
	"github.com/kappal-app/awx-local/pkg/readiness"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode reports err on stderr and maps it to the process exit status.
// A failed external tool passes its own status through.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, readiness.ErrTimeout) {
		notify.Errorf(stderr, "FATAL: deployment did not become ready: %v", err)
		return 1
	}

	notify.Errorf(stderr, "%v", err)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return 1
}

// printAccess prints the final access details
func printAccess(out io.Writer, address, password string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "URL:      %s\n", address)
	fmt.Fprintf(out, "Username: admin\n")
	fmt.Fprintf(out, "Password: %s\n", password)
}
