package main

import (
	"github.com/kappal-app/awx-local/pkg/notify"
	"github.com/spf13/cobra"
)

var exposeStop bool

var exposeCmd = &cobra.Command{
	Use:   "expose",
	Short: "Forward the AWX service to a local port",
	Long: `Start a background kubectl port-forward to the AWX service.

Nothing is started when a forward for the same service, ports and namespace
is already running. The forward outlives this command; its output goes to
.awx-local/port-forward.log. Use --stop to kill every matching forward.`,
	Args: cobra.NoArgs,
	RunE: runExpose,
}

func init() {
	exposeCmd.Flags().BoolVar(&exposeStop, "stop", false, "Stop running forwards instead of starting one")
}

func runExpose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	exposer, err := a.exposer()
	if err != nil {
		return err
	}

	if exposeStop {
		stopped, err := exposer.Stop(ctx)
		if err != nil {
			return err
		}
		notify.Successf(a.out, "stopped %d port-forward(s)", stopped)
		return nil
	}

	handle, err := exposer.Expose(ctx)
	if err != nil {
		return err
	}
	if handle.Started {
		notify.Successf(a.out, "port-forward started (pid %d), AWX at %s", handle.PID, handle.Address)
	} else {
		notify.Infof(a.out, "port-forward already running (pid %d), AWX at %s", handle.PID, handle.Address)
	}
	return nil
}
