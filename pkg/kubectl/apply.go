package kubectl

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/kappal-app/awx-local/pkg/runner"
)

// Kubectl builds and runs kubectl invocations against one cluster
type Kubectl struct {
	kubeconfig string
	context    string
	runner     runner.Runner
}

// New creates a kubectl wrapper. Empty kubeconfig/context use kubectl's defaults.
func New(kubeconfig, contextName string, r runner.Runner) *Kubectl {
	return &Kubectl{kubeconfig: kubeconfig, context: contextName, runner: r}
}

// globalArgs prefixes every invocation with the cluster selection flags
func (k *Kubectl) globalArgs() []string {
	var args []string
	if k.kubeconfig != "" {
		args = append(args, "--kubeconfig", k.kubeconfig)
	}
	if k.context != "" {
		args = append(args, "--context", k.context)
	}
	return args
}

// Apply applies a manifest file into a namespace
func (k *Kubectl) Apply(ctx context.Context, manifestPath, namespace string) error {
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		return fmt.Errorf("manifest not found: %s", manifestPath)
	}

	args := append(k.globalArgs(), "apply", "-f", manifestPath, "-n", namespace)
	if err := k.runner.Run(ctx, runner.Command{Name: "kubectl", Args: args}); err != nil {
		return fmt.Errorf("failed to apply %s: %w", manifestPath, err)
	}
	return nil
}

// PortForward describes a service port-forward
type PortForward struct {
	Namespace  string
	Service    string
	LocalPort  int
	RemotePort int
}

// PortForwardArgs returns the kubectl arguments for a forward, without the
// binary name. The same list identifies an already running forward.
func (k *Kubectl) PortForwardArgs(pf PortForward) []string {
	return append(k.globalArgs(),
		"port-forward",
		"svc/"+pf.Service,
		strconv.Itoa(pf.LocalPort)+":"+strconv.Itoa(pf.RemotePort),
		"-n", pf.Namespace,
	)
}
