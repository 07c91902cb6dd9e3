package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"giftlist-tools/core/audit"
	"giftlist-tools/core/config"
	"giftlist-tools/core/database"
	"giftlist-tools/core/environment"
	"giftlist-tools/core/logger"
	"giftlist-tools/core/metrics"
	"giftlist-tools/core/storage"
	"giftlist-tools/core/store"
	"giftlist-tools/core/store/dynamo"
	"giftlist-tools/core/store/local"
	"giftlist-tools/feature/integrity"
	"giftlist-tools/feature/notfound"
	"giftlist-tools/feature/product"
	"giftlist-tools/feature/product/models"

	"go.uber.org/zap"
)

// app holds the services shared by the server and the CLI commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	resolver  *environment.Resolver
	products  *product.Service
	notfound  *notfound.Service
	integrity *integrity.Service
	metrics   *metrics.Registry
	// reports is nil when report publishing is disabled or unreachable.
	reports *storage.Publisher

	closers []io.Closer
}

// newApp loads the configuration and wires the services. Audit and report
// publishing are optional: a failure to reach either is logged and the app runs
// without it.
func newApp(ctx context.Context, cliLogger bool) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logg *zap.Logger
	if cliLogger {
		logg = logger.NewCLI(cfg.Log.Level)
	} else if logg, err = logger.New(&cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	envs, err := cfg.EnvironmentList()
	if err != nil {
		return nil, err
	}

	caller := cfg.Server.Environment
	targets := cfg.Sync.Targets()
	if !cfg.Server.IsValidEnvironment(environment.Names(envs)...) {
		return nil, fmt.Errorf("environment %q is not one of %v", caller, environment.Names(envs))
	}

	localOpener := local.NewOpener(cfg.Local.Dir, logg)
	backends := environment.Backends{
		environment.BackendDynamo: dynamo.NewOpener(dynamo.Config{
			Region:   cfg.AWS.Region,
			Endpoint: cfg.AWS.Endpoint,
			Timeout:  time.Duration(cfg.AWS.TimeoutSeconds) * time.Second,
			Limiter:  store.NewLimiter(cfg.AWS.RequestsPerSecond),
		}, logg),
		environment.BackendLocal: localOpener,
	}

	resolver, err := environment.NewResolver(envs, caller, backends, environment.Options{
		RolePrefix:    cfg.AWS.RolePrefix,
		ProductSchema: models.ProductSchema,
	}, logg)
	if err != nil {
		_ = localOpener.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logg,
		resolver: resolver,
		closers:  []io.Closer{localOpener},
	}

	a.products = product.NewService(resolver, product.Environments{
		Caller:  caller,
		Primary: cfg.Sync.Primary,
		Update:  targets,
	}, logg)
	a.notfound = notfound.NewService(resolver, caller, notfound.Tables{
		Notfound:   cfg.Tables.Notfound,
		Lists:      cfg.Tables.Lists,
		ListsIndex: cfg.Tables.ListsIndex,
	}, logg)

	a.integrity = integrity.NewService(resolver, caller, []integrity.Table{
		{Name: cfg.Tables.Notfound, Schema: models.ProductSchema},
		{Name: cfg.Tables.Lists, Schema: models.ListSchema},
	}, logg)

	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
		a.products.WithMetrics(a.metrics)
		a.notfound.WithMetrics(a.metrics)
	}

	if cfg.Audit.Enabled {
		if recorder, err := openAudit(cfg); err != nil {
			logg.Warn("Optional audit database connection failed", zap.Error(err))
		} else {
			a.products.WithAudit(recorder)
			a.notfound.WithAudit(recorder)
			logg.Info("Audit trail enabled", zap.String("driver", cfg.Database.Driver))
		}
	}

	if cfg.Storage.Enabled {
		if client, publisher, err := openReports(ctx, cfg, logg); err != nil {
			logg.Warn("Optional report bucket unavailable", zap.Error(err))
		} else {
			a.products.WithReports(publisher)
			a.notfound.WithReports(publisher)
			a.integrity.WithReports(client, cfg.Storage.Bucket)
			a.reports = publisher
			logg.Info("Report publishing enabled", zap.String("bucket", cfg.Storage.Bucket))
		}
	}

	return a, nil
}

func openAudit(cfg *config.Config) (*audit.GormRecorder, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	recorder := audit.NewGormRecorder(db, cfg.Server.Environment)
	if err := recorder.Migrate(); err != nil {
		return nil, err
	}
	return recorder, nil
}

func openReports(ctx context.Context, cfg *config.Config, logg *zap.Logger) (storage.Client, *storage.Publisher, error) {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	publisher := storage.NewPublisher(client, cfg.Storage.Bucket, cfg.Storage.Prefix, logg)
	if err := publisher.EnsureBucket(ctx); err != nil {
		return nil, nil, err
	}
	return client, publisher, nil
}

// Close releases the local databases and flushes the logger.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("Close failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
