package main

import (
	"fmt"

	"github.com/kappal-app/awx-local/pkg/k8s"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsTail   int
)

var logsCmd = &cobra.Command{
	Use:   "logs [web|task]",
	Short: "View output from the AWX deployments",
	Long: `View output from the AWX web and task deployments.

Streams logs from every pod behind the deployments via client-go. Each line is
prefixed with the deployment name. Without an argument both deployments are
shown, interleaved in real time.

Without --follow, prints the last N lines (default 100) and exits.
With --follow, streams new log lines until interrupted (Ctrl+C).

Examples:
  awx-local logs                 Both deployments, last 100 lines
  awx-local logs task            Task deployment only
  awx-local logs --follow web    Stream web logs continuously`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"web", "task"},
	RunE:      runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsFollow, "follow", false, "Follow log output")
	logsCmd.Flags().IntVar(&logsTail, "tail", 100, "Number of lines to show from the end")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	deployments, err := selectWorkloads(a.cfg.Workloads, args)
	if err != nil {
		return err
	}

	client, err := a.client(cmd.Context())
	if err != nil {
		return err
	}

	opts := k8s.LogOptions{Follow: logsFollow, TailLines: int64(logsTail)}
	return client.StreamLogs(cmd.Context(), a.cfg.Namespace, deployments, opts, cmd.OutOrStdout())
}

// selectWorkloads picks web (first) or task (second) from the configured pair
func selectWorkloads(workloads []string, args []string) ([]string, error) {
	if len(args) == 0 {
		return workloads, nil
	}
	switch args[0] {
	case "web":
		return workloads[:1], nil
	case "task":
		return workloads[1:2], nil
	default:
		return nil, fmt.Errorf("unknown deployment %q, expected web or task", args[0])
	}
}
