package main

import (
	"fmt"
	"os/exec"

	"github.com/kappal-app/awx-local/pkg/cluster"
	"github.com/kappal-app/awx-local/pkg/config"
	"github.com/kappal-app/awx-local/pkg/deploy"
	"github.com/kappal-app/awx-local/pkg/docker"
	"github.com/kappal-app/awx-local/pkg/operator"
	"github.com/kappal-app/awx-local/pkg/readiness"
	"github.com/kappal-app/awx-local/pkg/setup"
	"github.com/kappal-app/awx-local/pkg/source"
	"github.com/kappal-app/awx-local/pkg/workspace"
	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Deploy AWX and expose it locally",
	Long: `Deploy AWX onto the local cluster and expose it.

Checks the required tools, starts the cluster if it is not running, then
probes the AWX web and task deployments once. If both already report their
replicas available the install is skipped. Otherwise the operator repository
is cloned (only when absent), the pinned release tag is checked out, the
namespace is created, "make deploy" installs the operator and the rendered
instance manifest is applied. The deployments are then polled every minute
for up to ten minutes, followed by a two minute settling delay.

Finally a kubectl port-forward is started in the background (unless one for
the same service and ports is already running) and the admin password is
printed.

Exit status is 1 when AWX does not become ready in time. A failing external
tool (minikube, make, kubectl) passes its own exit status through.

Flags:
  --version <tag>     Operator release to deploy (default 2.19.1)
  --timeout <dur>     Readiness budget (default 10m)
  --skip-preflight    Do not check for required tools

Examples:
  awx-local up
  awx-local up --provider kind --cluster awx
  awx-local up --version 2.18.0 --timeout 20m`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	addUpFlags(upCmd)
}

func addUpFlags(cmd *cobra.Command) {
	cmd.Flags().String("version", "2.19.1", "Operator release tag")
	cmd.Flags().Duration("timeout", config.Default().Readiness.Timeout, "Readiness budget")
	cmd.Flags().Bool("skip-preflight", false, "Skip the required tools check")
}

func runUp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	cfg := a.cfg

	skip, _ := cmd.Flags().GetBool("skip-preflight")
	if !skip {
		if err := preflight(cmd, a); err != nil {
			return err
		}
	}

	mgr, err := cluster.New(cfg.Cluster, a.runner, a.out, a.log)
	if err != nil {
		return err
	}
	if err := deploy.EnsureCluster(ctx, mgr, a.out); err != nil {
		return err
	}

	// The kubeconfig may only exist once the cluster is up
	client, err := a.client(ctx)
	if err != nil {
		return err
	}

	ws, err := workspace.New(cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	exposer, err := a.exposer()
	if err != nil {
		return err
	}

	repo := source.New(cfg.Operator.Repository, cfg.Operator.Path, cfg.Operator.Version, a.out, a.log)
	prober := a.prober(client)
	waiter := readiness.NewWaiter(prober, nil, readiness.Options{
		Interval: cfg.Readiness.Interval,
		Timeout:  cfg.Readiness.Timeout,
		Settle:   cfg.Readiness.Settle,
	}, a.log)

	d := deploy.New(deploy.Components{
		Prober:     prober,
		Waiter:     waiter,
		Source:     repo,
		Namespaces: client,
		Operator:   operator.NewInstaller(repo.Path(), cfg.Operator.Target, cfg.Namespace, a.runner, a.log),
		Renderer:   ws,
		Applier:    a.kubectl,
		Exposer:    exposer,
		Reporter:   a.reporter(client),
	}, deploy.Settings{
		Namespace:   cfg.Namespace,
		Instance:    cfg.Instance,
		Version:     cfg.Operator.Version,
		Template:    cfg.Manifest.Template,
		Placeholder: cfg.Manifest.Placeholder,
	}, a.out, a.log)

	result, err := d.Run(ctx)
	if err != nil {
		return err
	}

	printAccess(a.out, result.Access, result.Password)
	return nil
}

func preflight(cmd *cobra.Command, a *app) error {
	if a.cfg.Cluster.Provider != config.ProviderKind {
		return setup.Check(cmd.Context(), a.out, a.cfg.Cluster.Provider, exec.LookPath, nil)
	}

	dockerClient, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = dockerClient.Close() }()
	return setup.Check(cmd.Context(), a.out, a.cfg.Cluster.Provider, exec.LookPath, dockerClient)
}
