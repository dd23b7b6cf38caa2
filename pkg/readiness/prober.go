// Package readiness decides when the deployed workloads are available and
// waits for that to happen within a fixed budget.
package readiness

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// DeploymentGetter reads one deployment. Implemented by k8s.Client.
type DeploymentGetter interface {
	GetDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, error)
}

// WorkloadStatus is what one probe observed for one deployment
type WorkloadStatus struct {
	Name      string
	Exists    bool
	Available int32
	// Err is a query failure other than not-found. It counts as zero available.
	Err error
}

func (w WorkloadStatus) String() string {
	switch {
	case w.Err != nil:
		return w.Name + "=unknown"
	case !w.Exists:
		return w.Name + "=missing"
	default:
		return fmt.Sprintf("%s=%d", w.Name, w.Available)
	}
}

// Status is the result of one probe
type Status struct {
	Workloads []WorkloadStatus
	Want      int32
}

// Ready is true only when every workload exists with exactly Want available replicas
func (s Status) Ready() bool {
	if len(s.Workloads) == 0 {
		return false
	}
	for _, w := range s.Workloads {
		if w.Err != nil || !w.Exists || w.Available != s.Want {
			return false
		}
	}
	return true
}

// String renders the status on one line, e.g. "awx-demo-web=1 awx-demo-task=missing"
func (s Status) String() string {
	parts := make([]string, 0, len(s.Workloads))
	for _, w := range s.Workloads {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, " ")
}

// Prober queries the fixed set of workloads. It has no side effects.
type Prober struct {
	getter    DeploymentGetter
	namespace string
	names     []string
	want      int32
	log       logrus.FieldLogger
}

// NewProber creates a prober for the named deployments
func NewProber(getter DeploymentGetter, namespace string, names []string, want int32, log logrus.FieldLogger) *Prober {
	return &Prober{
		getter:    getter,
		namespace: namespace,
		names:     names,
		want:      want,
		log:       log,
	}
}

// Probe observes every workload once. Missing deployments and failed queries
// are reported in the status, never as an error.
func (p *Prober) Probe(ctx context.Context) Status {
	status := Status{Want: p.want, Workloads: make([]WorkloadStatus, 0, len(p.names))}

	for _, name := range p.names {
		ws := WorkloadStatus{Name: name}

		d, err := p.getter.GetDeployment(ctx, p.namespace, name)
		switch {
		case apierrors.IsNotFound(err):
		case err != nil:
			ws.Err = err
			p.log.WithFields(logrus.Fields{
				"namespace": p.namespace,
				"workload":  name,
			}).WithError(err).Debug("deployment query failed, counting zero available")
		default:
			ws.Exists = true
			ws.Available = d.Status.AvailableReplicas
		}

		status.Workloads = append(status.Workloads, ws)
	}

	return status
}
