package main

import (
	"encoding/json"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/workspace"
	"github.com/spf13/cobra"
)

func newSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print generated sample records as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("entity")
			count, _ := cmd.Flags().GetInt("count")
			entity, ok := catalog.NormalizeEntity(raw)
			if !ok {
				return catalog.NewError(catalog.KindValidation, "unknown entity "+raw, nil)
			}
			if count <= 0 {
				count = workspace.DefaultSampleSize
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(catalog.Generate(entity, count))
		},
	}
	cmd.Flags().StringP("entity", "e", "products", "entity to generate (orders, products)")
	cmd.Flags().IntP("count", "n", workspace.DefaultSampleSize, "number of records")
	return cmd
}
