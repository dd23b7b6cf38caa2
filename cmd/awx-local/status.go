package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/kappal-app/awx-local/pkg/k8s"
	"github.com/kappal-app/awx-local/pkg/notify"
	"github.com/kappal-app/awx-local/pkg/readiness"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether AWX is ready",
	Long: `Probe the AWX web and task deployments once and print their state.

Nothing is installed or changed. The exit status is 0 whether or not the
deployment is ready; a broken kubeconfig is still an error.

Table columns:
  NAME        Deployment name
  STATUS      ready, starting, missing or unknown (query failed)
  AVAILABLE   Available replicas out of the expected count

Below the deployments, every pod of the instance is listed with its container
readiness and restart count, e.g. "Restarting" for a crash-looping container.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.client(cmd.Context())
	if err != nil {
		return err
	}

	status := a.prober(client).Probe(cmd.Context())
	printStatus(cmd, status)

	pods, err := client.GetPodStatuses(cmd.Context(), a.cfg.Namespace, k8s.InstanceSelector(a.cfg.Instance))
	if err != nil {
		notify.Warningf(a.out, "could not list pods: %v", err)
		return nil
	}
	printPods(cmd, pods)
	return nil
}

func printPods(cmd *cobra.Command, pods []k8s.PodStatus) {
	if len(pods) == 0 {
		return
	}
	fmt.Fprintln(cmd.OutOrStdout())
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "POD\tSTATUS\tREADY\tRESTARTS")
	for _, p := range pods {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\n", p.Name, p.Status, p.Ready, p.Total, p.Restarts)
	}
	_ = w.Flush()
}

func printStatus(cmd *cobra.Command, status readiness.Status) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tAVAILABLE")
	for _, ws := range status.Workloads {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\n", ws.Name, workloadState(ws, status.Want), ws.Available, status.Want)
	}
	_ = w.Flush()

	if status.Ready() {
		fmt.Fprintln(cmd.OutOrStdout(), "\nAWX is ready")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "\nAWX is not ready")
	}
}

func workloadState(ws readiness.WorkloadStatus, want int32) string {
	switch {
	case ws.Err != nil:
		return "unknown"
	case !ws.Exists:
		return "missing"
	case ws.Available == want:
		return "ready"
	default:
		return "starting"
	}
}
