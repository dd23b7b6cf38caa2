// Package operator installs the operator's cluster definitions from its clone.
package operator

import (
	"context"
	"fmt"

	"github.com/kappal-app/awx-local/pkg/runner"
	"github.com/sirupsen/logrus"
)

// Installer runs the operator's build-tool target
type Installer struct {
	dir       string
	target    string
	namespace string
	runner    runner.Runner
	log       logrus.FieldLogger
}

// NewInstaller creates an Installer for the clone at dir
func NewInstaller(dir, target, namespace string, r runner.Runner, log logrus.FieldLogger) *Installer {
	return &Installer{dir: dir, target: target, namespace: namespace, runner: r, log: log}
}

// Install runs `make <target>` in the clone with NAMESPACE set
func (i *Installer) Install(ctx context.Context) error {
	i.log.WithFields(logrus.Fields{"dir": i.dir, "target": i.target, "namespace": i.namespace}).Info("installing operator")

	cmd := runner.Command{
		Name: "make",
		Args: []string{i.target},
		Dir:  i.dir,
		Env:  []string{"NAMESPACE=" + i.namespace},
	}
	if err := i.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to install operator: %w", err)
	}
	return nil
}
