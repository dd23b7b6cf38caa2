// Package portforward exposes the deployed service on a local port through a
// detached kubectl port-forward. At most one matching forward is ever running.
package portforward

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Target identifies one forward
type Target struct {
	Namespace  string
	Service    string
	LocalPort  int
	RemotePort int
}

// Handle describes the forward serving a Target. The process is not owned by
// the caller and keeps running after it exits.
type Handle struct {
	PID     int32
	Started bool
	Address string
}

// ProcessTable finds and stops processes by command line
type ProcessTable interface {
	// Find returns the pids whose command line contains signature
	Find(ctx context.Context, signature string) ([]int32, error)
	Kill(ctx context.Context, pid int32) error
}

// Launcher starts a process that outlives the caller
type Launcher interface {
	Launch(name string, args []string) (int32, error)
}

// Exposer keeps one port-forward running for its target
type Exposer struct {
	target   Target
	args     []string
	address  string
	procs    ProcessTable
	launcher Launcher
	log      logrus.FieldLogger
}

// NewExposer creates an Exposer. args is the full kubectl argument list of the
// forward and doubles as its signature in the process table.
func NewExposer(target Target, args []string, address string, procs ProcessTable, launcher Launcher, log logrus.FieldLogger) *Exposer {
	return &Exposer{
		target:   target,
		args:     args,
		address:  address,
		procs:    procs,
		launcher: launcher,
		log:      log,
	}
}

// Signature is the command line fragment a matching forward carries
func (e *Exposer) Signature() string {
	return strings.Join(e.args, " ")
}

// Expose starts the forward unless one with the same signature is running
func (e *Exposer) Expose(ctx context.Context) (Handle, error) {
	log := e.log.WithFields(logrus.Fields{
		"namespace": e.target.Namespace,
		"service":   e.target.Service,
		"ports":     fmt.Sprintf("%d:%d", e.target.LocalPort, e.target.RemotePort),
	})

	pids, err := e.procs.Find(ctx, e.Signature())
	if err != nil {
		return Handle{}, fmt.Errorf("failed to list processes: %w", err)
	}
	if len(pids) > 0 {
		log.WithField("pid", pids[0]).Info("port-forward already running")
		return Handle{PID: pids[0], Address: e.address}, nil
	}

	pid, err := e.launcher.Launch("kubectl", e.args)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to start port-forward: %w", err)
	}
	log.WithField("pid", pid).Info("port-forward started")
	return Handle{PID: pid, Started: true, Address: e.address}, nil
}

// Stop kills every forward matching the signature and returns how many it stopped
func (e *Exposer) Stop(ctx context.Context) (int, error) {
	pids, err := e.procs.Find(ctx, e.Signature())
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}

	stopped := 0
	for _, pid := range pids {
		if err := e.procs.Kill(ctx, pid); err != nil {
			return stopped, fmt.Errorf("failed to stop port-forward %d: %w", pid, err)
		}
		e.log.WithField("pid", pid).Info("port-forward stopped")
		stopped++
	}
	return stopped, nil
}
