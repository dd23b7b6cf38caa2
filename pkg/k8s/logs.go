package k8s

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// LogOptions configures log streaming
type LogOptions struct {
	Follow    bool
	TailLines int64
	// Container selects one container per pod. Empty means the pod default.
	Container string
}

// syncWriter serializes lines from concurrent streams
type syncWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *syncWriter) line(prefix, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s | %s\n", prefix, text)
}

// StreamLogs streams the logs of every pod behind the named deployments,
// prefixing each line with the deployment name
func (c *Client) StreamLogs(ctx context.Context, namespace string, deployments []string, opts LogOptions, out io.Writer) error {
	w := &syncWriter{out: out}

	var wg sync.WaitGroup
	errChan := make(chan error, len(deployments))

	for _, name := range deployments {
		wg.Add(1)
		go func(deployment string) {
			defer wg.Done()
			if err := c.streamDeploymentLogs(ctx, namespace, deployment, opts, w); err != nil {
				errChan <- fmt.Errorf("%s: %w", deployment, err)
			}
		}(name)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		return err
	}
	return nil
}

func (c *Client) streamDeploymentLogs(ctx context.Context, namespace, name string, opts LogOptions, w *syncWriter) error {
	d, err := c.GetDeployment(ctx, namespace, name)
	if err != nil {
		return err
	}
	selector, err := metav1.LabelSelectorAsSelector(d.Spec.Selector)
	if err != nil {
		return fmt.Errorf("invalid selector: %w", err)
	}

	pods, err := c.ListPods(ctx, namespace, selector.String())
	if err != nil {
		return err
	}
	if len(pods.Items) == 0 {
		w.line(name, "No pods found")
		return nil
	}

	var wg sync.WaitGroup
	for _, pod := range pods.Items {
		wg.Add(1)
		go func(podName string) {
			defer wg.Done()
			c.streamPodLogs(ctx, namespace, podName, name, opts, w)
		}(pod.Name)
	}

	wg.Wait()
	return nil
}

func (c *Client) streamPodLogs(ctx context.Context, namespace, podName, prefix string, opts LogOptions, w *syncWriter) {
	logOpts := &corev1.PodLogOptions{
		Follow:    opts.Follow,
		Container: opts.Container,
	}
	if opts.TailLines > 0 {
		logOpts.TailLines = &opts.TailLines
	}

	stream, err := c.clientset.CoreV1().Pods(namespace).GetLogs(podName, logOpts).Stream(ctx)
	if err != nil {
		w.line(prefix, "Error: "+err.Error())
		return
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
			w.line(prefix, scanner.Text())
		}
	}
}
