package k8s

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// InstanceSelector matches every pod the operator creates for an instance
func InstanceSelector(instance string) string {
	return "app.kubernetes.io/part-of=" + instance
}

// PodStatus is a one-line summary of a pod
type PodStatus struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Ready    int    `json:"ready"`
	Total    int    `json:"total"`
	Restarts int32  `json:"restarts"`
}

// ListPods returns the pods in a namespace matching a label selector
func (c *Client) ListPods(ctx context.Context, namespace, selector string) (*corev1.PodList, error) {
	return c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
}

// GetPodStatuses summarizes the matching pods, sorted by name
func (c *Client) GetPodStatuses(ctx context.Context, namespace, selector string) ([]PodStatus, error) {
	pods, err := c.ListPods(ctx, namespace, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}

	statuses := make([]PodStatus, 0, len(pods.Items))
	for _, pod := range pods.Items {
		status := PodStatus{
			Name:   pod.Name,
			Status: mapPodPhase(pod.Status.Phase),
			Total:  len(pod.Spec.Containers),
		}

		// The first container that is not running explains the pod
		explained := false
		for _, cs := range pod.Status.ContainerStatuses {
			status.Restarts += cs.RestartCount
			if cs.Ready {
				status.Ready++
				continue
			}
			if explained {
				continue
			}
			if cs.State.Waiting != nil {
				status.Status = mapWaitingReason(cs.State.Waiting.Reason)
				explained = true
			} else if cs.State.Terminated != nil {
				status.Status = fmt.Sprintf("Exited (%d)", cs.State.Terminated.ExitCode)
				explained = true
			}
		}

		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses, nil
}

// mapPodPhase maps a pod phase to a short status
func mapPodPhase(phase corev1.PodPhase) string {
	switch phase {
	case corev1.PodRunning:
		return "Running"
	case corev1.PodPending:
		return "Starting"
	case corev1.PodSucceeded:
		return "Completed"
	case corev1.PodFailed:
		return "Failed"
	case corev1.PodUnknown:
		return "Unknown"
	default:
		return string(phase)
	}
}

// mapWaitingReason maps container waiting reasons to a short status
func mapWaitingReason(reason string) string {
	switch reason {
	case "CrashLoopBackOff":
		return "Restarting"
	case "ImagePullBackOff", "ErrImagePull":
		return "Error (image)"
	case "ContainerCreating", "PodInitializing":
		return "Starting"
	default:
		return reason
	}
}
