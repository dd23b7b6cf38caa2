package cluster

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kappal-app/awx-local/pkg/runner"
)

// Minikube drives the minikube CLI
type Minikube struct {
	profile   string
	startArgs []string
	runner    runner.Runner
}

// NewMinikube creates a manager for one minikube profile
func NewMinikube(profile string, startArgs []string, r runner.Runner) *Minikube {
	return &Minikube{profile: profile, startArgs: startArgs, runner: r}
}

// Name returns the provider and profile
func (m *Minikube) Name() string {
	return "minikube/" + m.profile
}

// Running asks `minikube status`. A non-zero exit means the profile is not
// running; failing to launch minikube at all is an error.
func (m *Minikube) Running(ctx context.Context) (bool, error) {
	_, err := m.runner.Output(ctx, runner.Command{
		Name: "minikube",
		Args: []string{"status", "--profile", m.profile},
	})
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, fmt.Errorf("failed to query minikube status: %w", err)
}

// Start runs `minikube start` for the profile
func (m *Minikube) Start(ctx context.Context) error {
	args := append([]string{"start", "--profile", m.profile}, m.startArgs...)
	if err := m.runner.Run(ctx, runner.Command{Name: "minikube", Args: args}); err != nil {
		return fmt.Errorf("failed to start minikube: %w", err)
	}
	return nil
}
