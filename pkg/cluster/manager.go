// Package cluster starts the local Kubernetes cluster through an existing
// cluster manager (minikube or kind).
package cluster

import (
	"context"
	"fmt"
	"io"

	"github.com/kappal-app/awx-local/pkg/config"
	"github.com/kappal-app/awx-local/pkg/runner"
	"github.com/sirupsen/logrus"
)

// Manager handles the cluster lifecycle only. All Kubernetes operations go
// through client-go and kubectl once the cluster is running.
type Manager interface {
	// Name identifies the provider and cluster, e.g. "minikube/minikube"
	Name() string
	// Running reports whether the cluster is up
	Running(ctx context.Context) (bool, error)
	// Start brings the cluster up. Callers check Running first.
	Start(ctx context.Context) error
}

// New returns the manager for the configured provider
func New(cfg config.ClusterConfig, r runner.Runner, out io.Writer, log logrus.FieldLogger) (Manager, error) {
	switch cfg.Provider {
	case config.ProviderMinikube:
		return NewMinikube(cfg.Name, cfg.StartArgs, r), nil
	case config.ProviderKind:
		kind, err := NewKindDefault(cfg.Name, cfg.Kubeconfig, out, log)
		if err != nil {
			return nil, err
		}
		return kind, nil
	default:
		return nil, fmt.Errorf("unsupported cluster provider %q", cfg.Provider)
	}
}
