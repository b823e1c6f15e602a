package main

import (
	"encoding/json"

	"github.com/goliatone/go-shopadmin/command"
	"github.com/spf13/cobra"
)

func newRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload every catalog from the cache and report record counts",
		Long:  `refresh reads each configured table from the cache and prints the record count per entity. Unlike serve it does not fall back to sample data, so a failing cache exits with an error.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			loaded, err := command.NewRefreshCommand(a.Workspaces, command.WithRefreshLogger(a.Logger)).Run(cmd.Context())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(loaded); encErr != nil && err == nil {
				err = encErr
			}
			return err
		},
	}
}
