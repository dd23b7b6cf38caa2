// Package setup verifies the host has what a deployment run needs.
package setup

import (
	"context"
	"fmt"
	"io"

	"github.com/kappal-app/awx-local/pkg/config"
)

// LookPath resolves a tool name, as exec.LookPath does
type LookPath func(file string) (string, error)

// Pinger reaches the container runtime
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check runs the preflight for provider and stops at the first failure.
// docker is only consulted for the kind provider and may be nil otherwise.
func Check(ctx context.Context, out io.Writer, provider string, lookPath LookPath, docker Pinger) error {
	for _, tool := range RequiredTools(provider) {
		fmt.Fprintf(out, "Checking %s... ", tool)
		if _, err := lookPath(tool); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("%w: %s", ErrToolMissing, tool)
		}
		fmt.Fprintln(out, "OK")
	}

	if provider != config.ProviderKind {
		return nil
	}

	fmt.Fprint(out, "Checking Docker daemon... ")
	if docker == nil {
		fmt.Fprintln(out, "FAILED")
		return fmt.Errorf("docker is required for the %s provider", provider)
	}
	if err := docker.Ping(ctx); err != nil {
		fmt.Fprintln(out, "FAILED")
		return fmt.Errorf("docker is not running: %w", err)
	}
	fmt.Fprintln(out, "OK")
	return nil
}
