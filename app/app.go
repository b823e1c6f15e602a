package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-shopadmin/adapters/metrics"
	exportpdf "github.com/goliatone/go-shopadmin/adapters/pdf"
	storebun "github.com/goliatone/go-shopadmin/adapters/store/bun"
	storefs "github.com/goliatone/go-shopadmin/adapters/store/fs"
	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/config"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/goliatone/go-shopadmin/remote"
	"github.com/goliatone/go-shopadmin/workspace"
)

// PDF engine names accepted by config.
const (
	PDFEngineAuto     = "auto"
	PDFEngineChromium = "chromium"
	PDFEngineText     = "text"
)

// App holds the application dependencies.
type App struct {
	Config     config.Config
	Logger     catalog.Logger
	Workspaces *workspace.Registry
	Runner     *export.Runner
	Metrics    *metrics.Collector
	Client     *remote.Client
	Store      prefs.Store

	closers []io.Closer
}

// New builds the workspaces for every entity from cfg. Records are not
// loaded; call Load or let the first query load them.
func New(ctx context.Context, cfg config.Config, logger catalog.Logger) (*App, error) {
	logger = catalog.LoggerOrNop(logger)
	a := &App{Config: cfg, Logger: logger}

	if cfg.Server.Metrics {
		collector, err := metrics.NewCollector(nil)
		if err != nil {
			return nil, err
		}
		a.Metrics = collector
	}

	a.Runner = a.buildRunner()

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = store

	if !cfg.Backend.Offline {
		client := remote.NewClient(cfg.Backend.URL, cfg.Backend.Project, cfg.Backend.Timeout)
		client.Concurrency = cfg.Backend.ChunkConcurrency
		client.Logger = logger
		a.Client = client
	}

	a.Workspaces = workspace.NewRegistry()
	for _, entity := range []catalog.Entity{catalog.EntityOrders, catalog.EntityProducts} {
		ws, err := workspace.New(a.workspaceOptions(entity))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		if err := a.Workspaces.Register(ws); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	logger.Infof("catalog ready: backend=%s prefs=%s offline=%t", cfg.Backend.URL, cfg.Prefs.Driver, cfg.Backend.Offline)
	return a, nil
}

// Load loads every workspace, logging notices for sample fallbacks.
func (a *App) Load(ctx context.Context) error {
	var errs []error
	for _, entity := range a.Workspaces.Entities() {
		ws, err := a.Workspaces.Get(string(entity))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		info, err := ws.Load(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", entity, err))
			continue
		}
		if info.Notice != "" {
			a.Logger.Infof("%s", info.Notice)
		}
		a.Logger.Debugf("loaded %d %s from %s", info.Count, entity, info.Source)
	}
	return errors.Join(errs...)
}

// Close releases app resources.
func (a *App) Close() error {
	var errs []error
	if a.Workspaces != nil {
		errs = append(errs, a.Workspaces.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) workspaceOptions(entity catalog.Entity) workspace.Options {
	cfg := a.Config
	opts := workspace.Options{
		Entity:     entity,
		Table:      cfg.Backend.Table(string(entity)),
		Prefs:      prefs.New(a.Store, entity, a.Logger),
		Exporter:   a.Runner,
		Logger:     a.Logger,
		Debounce:   cfg.Search.Debounce,
		SampleSize: cfg.Backend.SampleSize,
	}
	if tz := cfg.Export.Timezone; tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			opts.Location = loc
		} else {
			a.Logger.Errorf("unknown timezone %q, using UTC: %v", tz, err)
		}
	}
	if a.Client != nil {
		opts.Source = a.Client
		if cfg.Search.Enabled {
			opts.Remote = &remote.Adapter{
				Searcher:    a.Client,
				Entity:      entity,
				Table:       opts.Table,
				HitsPerPage: cfg.Search.HitsPerPage,
				Logger:      a.Logger,
			}
		}
	}
	if a.Metrics != nil {
		opts.Observer = a.Metrics
	}
	return opts
}

func (a *App) buildRunner() *export.Runner {
	cfg := a.Config.Export
	runner := export.NewRunner()
	runner.Logger = a.Logger
	runner.Options.PDF.PageSize = cfg.PDF.PageSize
	runner.Options.Format = export.FormatOptions{Locale: cfg.Locale, Timezone: cfg.Timezone}
	if a.Metrics != nil {
		runner.Metrics = a.Metrics
	}

	renderer := exportpdf.Renderer{Logger: a.Logger}
	switch cfg.PDF.Engine {
	case PDFEngineText:
	default:
		engine := &exportpdf.ChromiumEngine{
			BrowserPath: cfg.PDF.BrowserPath,
			Headless:    true,
			Timeout:     cfg.PDF.Timeout,
		}
		if cfg.PDF.Engine == PDFEngineChromium || engine.Available() {
			renderer.Engine = engine
			a.closers = append(a.closers, engine)
		} else {
			a.Logger.Infof("no chromium binary found, pdf exports use the text layout")
		}
	}
	exportpdf.Register(runner.Renderers, renderer)
	return runner
}

func (a *App) openStore(ctx context.Context) (prefs.Store, error) {
	switch a.Config.Prefs.Driver {
	case config.DriverSQLite:
		store, err := storebun.Open(ctx, a.Config.Prefs.DSN)
		if err != nil {
			return nil, catalog.NewError(catalog.KindExternal, "open preference database", err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	case config.DriverFile:
		return storefs.NewStore(a.Config.Prefs.DSN), nil
	default:
		return prefs.NewMemoryStore(), nil
	}
}
