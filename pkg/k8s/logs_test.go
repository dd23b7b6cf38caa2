package k8s

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func selectedDeployment(name string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "awx"},
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: map[string]string{"app.kubernetes.io/name": name}},
		},
	}
}

func labeledPod(name, deployment string) *corev1.Pod {
	return &corev1.Pod{ObjectMeta: metav1.ObjectMeta{
		Name:      name,
		Namespace: "awx",
		Labels:    map[string]string{"app.kubernetes.io/name": deployment},
	}}
}

func TestStreamLogs(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(
		selectedDeployment("awx-demo-web"),
		selectedDeployment("awx-demo-task"),
		labeledPod("awx-demo-web-7d9", "awx-demo-web"),
	))

	var out bytes.Buffer
	err := c.StreamLogs(context.Background(), "awx", []string{"awx-demo-web", "awx-demo-task"}, LogOptions{TailLines: 10}, &out)
	require.NoError(t, err)

	// The fake clientset answers every log request with "fake logs"
	assert.Contains(t, out.String(), "awx-demo-web | fake logs\n")
	assert.Contains(t, out.String(), "awx-demo-task | No pods found\n")
}

func TestStreamLogsMissingDeployment(t *testing.T) {
	c := NewFromClientset(fake.NewClientset())

	err := c.StreamLogs(context.Background(), "awx", []string{"awx-demo-web"}, LogOptions{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "awx-demo-web")
}
