package main

import (
	"context"
	"os"

	"github.com/goliatone/go-shopadmin/app"
	"github.com/goliatone/go-shopadmin/config"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		cfg.Backend.Offline = true
	}
	return cfg, cfg.Validate()
}

func buildApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := app.NewSlogLogger(os.Stderr, cfg.Log.Level)
	return app.New(ctx, cfg, logger)
}
