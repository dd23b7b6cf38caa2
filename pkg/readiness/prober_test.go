package readiness

import (
	"context"
	"errors"
	"testing"

	"github.com/kappal-app/awx-local/pkg/k8s"
	"github.com/kappal-app/awx-local/pkg/logging"
	"github.com/stretchr/testify/assert"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

var workloads = []string{"awx-demo-web", "awx-demo-task"}

func deployment(name string, available int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "awx"},
		Status:     appsv1.DeploymentStatus{AvailableReplicas: available},
	}
}

func newProber(cs *fake.Clientset) *Prober {
	return NewProber(k8s.NewFromClientset(cs), "awx", workloads, 1, logging.Discard())
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name    string
		objects []runtime.Object
		ready   bool
		summary string
	}{
		{
			name:    "both absent",
			ready:   false,
			summary: "awx-demo-web=missing awx-demo-task=missing",
		},
		{
			name:    "one absent",
			objects: []runtime.Object{deployment("awx-demo-web", 1)},
			ready:   false,
			summary: "awx-demo-web=1 awx-demo-task=missing",
		},
		{
			name:    "task not available",
			objects: []runtime.Object{deployment("awx-demo-web", 1), deployment("awx-demo-task", 0)},
			ready:   false,
			summary: "awx-demo-web=1 awx-demo-task=0",
		},
		{
			name:    "both available",
			objects: []runtime.Object{deployment("awx-demo-web", 1), deployment("awx-demo-task", 1)},
			ready:   true,
			summary: "awx-demo-web=1 awx-demo-task=1",
		},
		{
			name:    "more than one available",
			objects: []runtime.Object{deployment("awx-demo-web", 2), deployment("awx-demo-task", 1)},
			ready:   false,
			summary: "awx-demo-web=2 awx-demo-task=1",
		},
		{
			name: "other namespace does not count",
			objects: []runtime.Object{
				&appsv1.Deployment{
					ObjectMeta: metav1.ObjectMeta{Name: "awx-demo-web", Namespace: "default"},
					Status:     appsv1.DeploymentStatus{AvailableReplicas: 1},
				},
				deployment("awx-demo-task", 1),
			},
			ready:   false,
			summary: "awx-demo-web=missing awx-demo-task=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := newProber(fake.NewClientset(tt.objects...)).Probe(context.Background())
			assert.Equal(t, tt.ready, status.Ready())
			assert.Equal(t, tt.summary, status.String())
		})
	}
}

func TestProbeToleratesQueryFailure(t *testing.T) {
	cs := fake.NewClientset(deployment("awx-demo-web", 1), deployment("awx-demo-task", 1))
	cs.PrependReactor("get", "deployments", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.(k8stesting.GetAction).GetName() == "awx-demo-task" {
			return true, nil, errors.New("etcdserver: request timed out")
		}
		return false, nil, nil
	})

	status := newProber(cs).Probe(context.Background())

	assert.False(t, status.Ready())
	assert.Equal(t, "awx-demo-web=1 awx-demo-task=unknown", status.String())
	assert.Equal(t, int32(0), status.Workloads[1].Available)
}

func TestStatusWithoutWorkloadsIsNotReady(t *testing.T) {
	assert.False(t, Status{Want: 1}.Ready())
}
