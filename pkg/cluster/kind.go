package cluster

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kappal-app/awx-local/pkg/docker"
	"github.com/sirupsen/logrus"
	kindcluster "sigs.k8s.io/kind/pkg/cluster"
	kindlog "sigs.k8s.io/kind/pkg/log"
)

// kindReadyWait is how long kind waits for the control plane after create
const kindReadyWait = 3 * time.Minute

// KindProvider is the subset of kind's cluster.Provider used here
type KindProvider interface {
	List() ([]string, error)
	Create(name string, options ...kindcluster.CreateOption) error
}

// ContainerRuntime reports and starts node containers. Implemented by docker.Client.
type ContainerRuntime interface {
	ContainerState(ctx context.Context, name string) (exists bool, running bool, err error)
	ContainerStart(ctx context.Context, containerID string) error
}

// Kind manages a kind cluster through the kind library
type Kind struct {
	name       string
	kubeconfig string
	provider   KindProvider
	containers ContainerRuntime
	log        logrus.FieldLogger
}

// NewKind creates a kind manager from its collaborators
func NewKind(name, kubeconfig string, provider KindProvider, containers ContainerRuntime, log logrus.FieldLogger) *Kind {
	return &Kind{
		name:       name,
		kubeconfig: kubeconfig,
		provider:   provider,
		containers: containers,
		log:        log,
	}
}

// NewKindDefault wires the kind library and the Docker client
func NewKindDefault(name, kubeconfig string, out io.Writer, log logrus.FieldLogger) (*Kind, error) {
	containers, err := docker.NewClient()
	if err != nil {
		return nil, err
	}
	provider := kindcluster.NewProvider(kindcluster.ProviderWithLogger(&streamLogger{out: out, log: log}))
	return NewKind(name, kubeconfig, provider, containers, log), nil
}

// Name returns the provider and cluster name
func (k *Kind) Name() string {
	return "kind/" + k.name
}

// controlPlane is the node container kind names after the cluster
func (k *Kind) controlPlane() string {
	return k.name + "-control-plane"
}

func (k *Kind) exists() (bool, error) {
	clusters, err := k.provider.List()
	if err != nil {
		return false, fmt.Errorf("failed to list kind clusters: %w", err)
	}
	return slices.Contains(clusters, k.name), nil
}

// Running reports whether the cluster exists and its control plane container runs
func (k *Kind) Running(ctx context.Context) (bool, error) {
	exists, err := k.exists()
	if err != nil || !exists {
		return false, err
	}

	_, running, err := k.containers.ContainerState(ctx, k.controlPlane())
	if err != nil {
		return false, err
	}
	return running, nil
}

// Start restarts a stopped cluster's control plane, or creates the cluster
func (k *Kind) Start(ctx context.Context) error {
	exists, err := k.exists()
	if err != nil {
		return err
	}

	if exists {
		k.log.WithField("container", k.controlPlane()).Info("starting stopped kind control plane")
		return k.containers.ContainerStart(ctx, k.controlPlane())
	}

	opts := []kindcluster.CreateOption{
		kindcluster.CreateWithWaitForReady(kindReadyWait),
		kindcluster.CreateWithDisplayUsage(false),
		kindcluster.CreateWithDisplaySalutation(false),
	}
	if k.kubeconfig != "" {
		opts = append(opts, kindcluster.CreateWithKubeconfigPath(k.kubeconfig))
	}
	if err := k.provider.Create(k.name, opts...); err != nil {
		return fmt.Errorf("failed to create kind cluster %s: %w", k.name, err)
	}
	return nil
}

// streamLogger shows kind's progress output to the user and routes its
// warnings and errors through the structured logger.
type streamLogger struct {
	out io.Writer
	log logrus.FieldLogger
}

func (l *streamLogger) Warn(message string) {
	l.log.Warn(message)
}

func (l *streamLogger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *streamLogger) Error(message string) {
	l.log.Error(message)
}

func (l *streamLogger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

// V hides kind's verbose levels
func (l *streamLogger) V(level kindlog.Level) kindlog.InfoLogger {
	if level > 0 {
		return noopInfoLogger{}
	}
	return l
}

func (l *streamLogger) Info(message string) {
	l.write(message)
}

func (l *streamLogger) Infof(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...))
}

func (l *streamLogger) Enabled() bool {
	return true
}

func (l *streamLogger) write(message string) {
	out := l.out
	if out == nil {
		out = os.Stdout
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}
	_, _ = io.WriteString(out, message)
}

type noopInfoLogger struct{}

func (noopInfoLogger) Info(string) {}

func (noopInfoLogger) Infof(string, ...any) {}

func (noopInfoLogger) Enabled() bool {
	return false
}
