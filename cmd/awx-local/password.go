package main

import (
	"github.com/spf13/cobra"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Print the AWX admin password",
	Args:  cobra.NoArgs,
	RunE:  runPassword,
}

func runPassword(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	client, err := a.client(cmd.Context())
	if err != nil {
		return err
	}

	password, err := a.reporter(client).Password(cmd.Context())
	if err != nil {
		return err
	}
	printAccess(a.out, a.cfg.Address(), password)
	return nil
}
