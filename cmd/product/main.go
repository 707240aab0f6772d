package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductCRUD/internal/config"
	"ProductCRUD/internal/product"
	"ProductCRUD/pkg/kit"
)

const service = "product"

func main() {
	cfg, err := config.Load(config.DefaultSources())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = logger.Sync() }()

	logger.Info("config loaded", zap.Stringer("config", cfg))

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("open store failed", zap.Error(err))
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := product.HTTPDeps{
		Log:            logger,
		Service:        service,
		Registry:       reg,
		Prefix:         cfg.Server.Prefix,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	}
	if cfg.Auth.Secret != "" {
		deps.Tokens = product.NewTokenMaker(cfg.Auth.Secret)
	}
	if cfg.RateLimit.Writes > 0 {
		deps.WriteLimiter = kit.NewIPRateLimiter(cfg.RateLimit.Writes, cfg.RateLimit.Window)
	}

	h := product.NewHandler(product.NewServer(store, logger), deps)

	opts := kit.ServerOptions{
		ReadHeaderTimeout: cfg.Server.Timeout.ReadHeader,
		ReadTimeout:       cfg.Server.Timeout.Read,
		WriteTimeout:      cfg.Server.Timeout.Write,
		IdleTimeout:       cfg.Server.Timeout.Idle,
		ShutdownTimeout:   cfg.Server.Timeout.Shutdown,
	}
	if err := kit.RunHTTPServer(fmt.Sprintf(":%d", cfg.Server.Port), h, logger, opts); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}

func openStore(cfg *config.Config, logger *zap.Logger) (product.Store, func(), error) {
	if cfg.Store.Driver != config.DriverPostgres {
		return product.NewMemStore(), func() {}, nil
	}

	if cfg.Database.Migrate {
		if err := product.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		logger.Info("migrations applied")
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	return product.NewPostgresStore(db), func() { _ = db.Close() }, nil
}
