package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-shopadmin/app"
	"github.com/goliatone/go-shopadmin/command"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/workspace"
	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a filtered catalog view to a file",
		Long: `Export a filtered catalog view.

Examples:
  # Unfulfilled orders as CSV
  shopadmin export --entity orders --filter unfulfilled --format csv

  # Selected columns with an advanced query
  shopadmin export --entity orders --fields id,customer,total --adv "total:>100" --out big.csv

  # A batch of exports described in a JSON file
  shopadmin export --batch exports.json --dir ./out`,
		RunE: runExport,
	}
	flags := cmd.Flags()
	flags.StringP("entity", "e", "orders", "entity to export (orders, products)")
	flags.StringP("format", "f", "", "csv, json, xlsx or pdf (defaults to the saved setting)")
	flags.StringSlice("fields", nil, "fields to include, in order")
	flags.String("filter", "", "quick filter name")
	flags.StringP("query", "q", "", "free text search")
	flags.String("adv", "", "advanced query, e.g. status:paid AND total:>50")
	flags.StringSlice("ids", nil, "export only these record ids")
	flags.String("locale", "", "display locale")
	flags.String("timezone", "", "display timezone")
	flags.StringP("out", "o", "", "output file, - for stdout (defaults to the generated filename)")
	flags.String("batch", "", "JSON file with a list of exports")
	flags.String("dir", ".", "output directory for --batch")
	flags.Duration("interval", 0, "pause between batch exports")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	flags := cmd.Flags()
	if batchPath, _ := flags.GetString("batch"); batchPath != "" {
		dir, _ := flags.GetString("dir")
		interval, _ := flags.GetDuration("interval")
		return runBatch(ctx, cmd, a, batchPath, dir, interval)
	}

	subscriptions, err := app.RegisterHandlers(a.Workspaces, a.Runner.Renderers.Formats())
	if err != nil {
		return err
	}
	defer app.Unsubscribe(subscriptions)

	entity, _ := flags.GetString("entity")
	format, _ := flags.GetString("format")
	fields, _ := flags.GetStringSlice("fields")
	quick, _ := flags.GetString("filter")
	q, _ := flags.GetString("query")
	adv, _ := flags.GetString("adv")
	ids, _ := flags.GetStringSlice("ids")
	locale, _ := flags.GetString("locale")
	timezone, _ := flags.GetString("timezone")
	out, _ := flags.GetString("out")

	buf := &bytes.Buffer{}
	result, err := dispatcher.DispatchWithResult[command.RunExport, export.Result](ctx, command.RunExport{
		Entity: entity,
		Request: workspace.ExportRequest{
			View:      workspace.View{QuickFilter: quick, Query: q, Advanced: adv},
			Format:    export.Format(format),
			Fields:    fields,
			Selection: export.Selection{IDs: ids},
			Locale:    locale,
			Timezone:  timezone,
			Output:    buf,
		},
	})
	if err != nil {
		return err
	}

	if out == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if strings.TrimSpace(out) == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", result.Rows, out)
	return nil
}

func runBatch(ctx context.Context, cmd *cobra.Command, a *app.App, path, dir string, interval time.Duration) error {
	batch, err := command.LoadBatchFile(path)
	if err != nil {
		return err
	}
	runner := command.NewBatchExportCommand(a.Workspaces, dir, command.BatchLimits{MinInterval: interval})
	written, err := runner.Run(ctx, batch)
	for _, file := range written {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", filepath.Clean(file))
	}
	return err
}
