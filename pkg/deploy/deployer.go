// Package deploy runs the deployment flow: cluster, operator, instance,
// readiness, exposure and credentials. Every step is fatal on failure and
// nothing is rolled back.
package deploy

import (
	"context"
	"fmt"
	"io"

	"github.com/kappal-app/awx-local/pkg/notify"
	"github.com/kappal-app/awx-local/pkg/portforward"
	"github.com/kappal-app/awx-local/pkg/readiness"
	"github.com/sirupsen/logrus"
)

// Cluster is a startable local cluster
type Cluster interface {
	Name() string
	Running(ctx context.Context) (bool, error)
	Start(ctx context.Context) error
}

// Prober observes the deployed workloads once
type Prober interface {
	Probe(ctx context.Context) readiness.Status
}

// Waiter blocks until the workloads are ready
type Waiter interface {
	Wait(ctx context.Context) error
}

// Source provides the operator checkout
type Source interface {
	Ensure(ctx context.Context) (cloned bool, err error)
}

// Namespaces creates the target namespace
type Namespaces interface {
	EnsureNamespace(ctx context.Context, name string) (created bool, err error)
}

// Operator installs the operator definitions
type Operator interface {
	Install(ctx context.Context) error
}

// Renderer renders the instance manifest
type Renderer interface {
	RenderManifest(template, placeholder, value string) (string, error)
}

// Applier applies a manifest file
type Applier interface {
	Apply(ctx context.Context, manifestPath, namespace string) error
}

// Exposer makes the service reachable locally
type Exposer interface {
	Expose(ctx context.Context) (portforward.Handle, error)
}

// Reporter fetches the admin password
type Reporter interface {
	Password(ctx context.Context) (string, error)
}

// Components are the collaborators of a Deployer
type Components struct {
	Prober     Prober
	Waiter     Waiter
	Source     Source
	Namespaces Namespaces
	Operator   Operator
	Renderer   Renderer
	Applier    Applier
	Exposer    Exposer
	Reporter   Reporter
}

// Settings are the names the flow works with
type Settings struct {
	Namespace   string
	Instance    string
	Version     string
	Template    string
	Placeholder string
}

// Result summarizes a run
type Result struct {
	// Installed is false when the workloads were already ready
	Installed      bool
	Access         string
	ForwardPID     int32
	ForwardStarted bool
	Password       string
}

// Deployer runs the flow against one cluster
type Deployer struct {
	c        Components
	settings Settings
	out      io.Writer
	log      logrus.FieldLogger
}

// New creates a Deployer. out receives the step announcements.
func New(c Components, settings Settings, out io.Writer, log logrus.FieldLogger) *Deployer {
	return &Deployer{c: c, settings: settings, out: out, log: log}
}

// EnsureCluster starts the cluster unless it is already running
func EnsureCluster(ctx context.Context, cluster Cluster, out io.Writer) error {
	running, err := cluster.Running(ctx)
	if err != nil {
		return fmt.Errorf("failed to check cluster %s: %w", cluster.Name(), err)
	}
	if running {
		notify.Infof(out, "cluster %s is running", cluster.Name())
		return nil
	}

	notify.Activityf(out, "starting cluster %s", cluster.Name())
	if err := cluster.Start(ctx); err != nil {
		return fmt.Errorf("failed to start cluster %s: %w", cluster.Name(), err)
	}
	notify.Successf(out, "cluster %s started", cluster.Name())
	return nil
}

// Run probes once. Ready workloads skip the install path entirely; otherwise
// the operator and instance are installed and awaited. Both paths end with
// exposure and the credential report.
func (d *Deployer) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	status := d.c.Prober.Probe(ctx)
	d.log.WithField("namespace", d.settings.Namespace).Debugf("initial probe: %s", status)

	if status.Ready() {
		notify.Successf(d.out, "%s is already running, skipping install", d.settings.Instance)
	} else {
		if err := d.install(ctx); err != nil {
			return nil, err
		}
		result.Installed = true
	}

	if err := d.expose(ctx, result); err != nil {
		return nil, err
	}

	password, err := d.c.Reporter.Password(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin password: %w", err)
	}
	result.Password = password

	return result, nil
}

func (d *Deployer) install(ctx context.Context) error {
	notify.Activityf(d.out, "preparing operator %s", d.settings.Version)
	cloned, err := d.c.Source.Ensure(ctx)
	if err != nil {
		return err
	}
	if cloned {
		notify.Successf(d.out, "operator repository cloned")
	} else {
		notify.Infof(d.out, "using existing operator checkout")
	}

	created, err := d.c.Namespaces.EnsureNamespace(ctx, d.settings.Namespace)
	if err != nil {
		return fmt.Errorf("failed to ensure namespace %s: %w", d.settings.Namespace, err)
	}
	if created {
		notify.Successf(d.out, "namespace %s created", d.settings.Namespace)
	}

	notify.Activityf(d.out, "installing operator into %s", d.settings.Namespace)
	if err := d.c.Operator.Install(ctx); err != nil {
		return err
	}

	manifest, err := d.c.Renderer.RenderManifest(d.settings.Template, d.settings.Placeholder, d.settings.Instance)
	if err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}

	notify.Activityf(d.out, "deploying %s", d.settings.Instance)
	if err := d.c.Applier.Apply(ctx, manifest, d.settings.Namespace); err != nil {
		return err
	}

	notify.Activityf(d.out, "waiting for %s to become ready", d.settings.Instance)
	if err := d.c.Waiter.Wait(ctx); err != nil {
		return err
	}
	notify.Successf(d.out, "%s is ready", d.settings.Instance)
	return nil
}

func (d *Deployer) expose(ctx context.Context, result *Result) error {
	handle, err := d.c.Exposer.Expose(ctx)
	if err != nil {
		return err
	}

	result.Access = handle.Address
	result.ForwardPID = handle.PID
	result.ForwardStarted = handle.Started

	if handle.Started {
		notify.Successf(d.out, "port-forward started (pid %d)", handle.PID)
	} else {
		notify.Infof(d.out, "port-forward already running (pid %d)", handle.PID)
	}
	return nil
}
