package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kappal-app/awx-local/pkg/config"
	"github.com/kappal-app/awx-local/pkg/credentials"
	"github.com/kappal-app/awx-local/pkg/k8s"
	"github.com/kappal-app/awx-local/pkg/kubectl"
	"github.com/kappal-app/awx-local/pkg/logging"
	"github.com/kappal-app/awx-local/pkg/portforward"
	"github.com/kappal-app/awx-local/pkg/readiness"
	"github.com/kappal-app/awx-local/pkg/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app holds what every command builds from its flags
type app struct {
	cfg     config.Config
	log     *logrus.Logger
	out     io.Writer
	runner  runner.Runner
	kubectl *kubectl.Kubectl
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	r := runner.NewExec(out, cmd.ErrOrStderr(), log)
	return &app{
		cfg:     cfg,
		log:     log,
		out:     out,
		runner:  r,
		kubectl: kubectl.New(cfg.Cluster.Kubeconfig, cfg.Cluster.Context, r),
	}, nil
}

// client connects to the cluster and fails fast when it does not answer
func (a *app) client(ctx context.Context) (*k8s.Client, error) {
	client, err := k8s.NewClient(a.cfg.Cluster.Kubeconfig, a.cfg.Cluster.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to create k8s client: %w", err)
	}
	if err := client.CheckConnection(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) prober(client *k8s.Client) *readiness.Prober {
	return readiness.NewProber(client, a.cfg.Namespace, a.cfg.Workloads, a.cfg.Replicas, a.log)
}

func (a *app) reporter(client *k8s.Client) *credentials.Reporter {
	return credentials.NewReporter(client, credentials.Lookup{
		Namespace: a.cfg.Namespace,
		Name:      a.cfg.Admin.Secret,
		Search:    a.cfg.Admin.Search,
		Marker:    a.cfg.Admin.Marker,
		Key:       a.cfg.Admin.Key,
	}, a.log)
}

func (a *app) exposer() (*portforward.Exposer, error) {
	if err := os.MkdirAll(a.cfg.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", a.cfg.WorkDir, err)
	}

	target := portforward.Target{
		Namespace:  a.cfg.Namespace,
		Service:    a.cfg.Expose.Service,
		LocalPort:  a.cfg.Expose.LocalPort,
		RemotePort: a.cfg.Expose.RemotePort,
	}
	args := a.kubectl.PortForwardArgs(kubectl.PortForward{
		Namespace:  target.Namespace,
		Service:    target.Service,
		LocalPort:  target.LocalPort,
		RemotePort: target.RemotePort,
	})
	launcher := portforward.ExecLauncher{LogPath: filepath.Join(a.cfg.WorkDir, "port-forward.log")}

	return portforward.NewExposer(target, args, a.cfg.Address(), portforward.SystemProcesses{}, launcher, a.log), nil
}
