package main

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "awx-local",
	Short: "Deploy AWX onto a local Kubernetes cluster",
	Long: `awx-local brings up AWX on a local cluster with the AWX operator.

It starts the cluster if needed, installs the pinned operator release,
deploys the AWX instance, waits for it to become ready, forwards its
service to a local port and prints the admin password. Re-running it
against a ready deployment only re-exposes it and prints the password.

Running awx-local without a subcommand is the same as "awx-local up".

Configuration is read from built-in defaults, the --config file,
AWX_LOCAL_* environment variables and flags, in increasing precedence.
Nested keys use underscores, e.g. AWX_LOCAL_READINESS_TIMEOUT=15m.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runUp,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (YAML)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringP("namespace", "n", "awx", "Namespace to deploy into")
	flags.String("instance", "awx-demo", "AWX instance name")
	flags.String("kubeconfig", "", "Path to the kubeconfig file")
	flags.String("context", "", "Kubeconfig context to use")
	flags.String("provider", "minikube", "Cluster provider (minikube, kind)")
	flags.String("cluster", "minikube", "Cluster (minikube profile or kind cluster) name")
	flags.Int("port", 8080, "Local port to expose AWX on")

	addUpFlags(rootCmd)

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(passwordCmd)
	rootCmd.AddCommand(exposeCmd)
}
