package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/config"
	"github.com/amirphl/simple-indicators/internal/db"
	"github.com/amirphl/simple-indicators/internal/exchange"
	"github.com/amirphl/simple-indicators/internal/indicator"
	"github.com/amirphl/simple-indicators/internal/kernel"
	"github.com/amirphl/simple-indicators/internal/loader"
	"github.com/amirphl/simple-indicators/internal/metrics"
	"github.com/amirphl/simple-indicators/internal/render"
	"github.com/amirphl/simple-indicators/internal/utils"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := utils.InitLogger(cfg.LogLevel, cfg.LogPaths)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Error("Main | run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	logger := utils.GetLogger()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("Main | metrics server stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("Main | serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	var store *db.Default
	if cfg.Loader == "Postgres" || cfg.Persist {
		store, err = db.Open(ctx, cfg.DBConnStr)
		if err != nil {
			return err
		}
		defer store.Close()
		store.GetDB().SetMaxOpenConns(cfg.DBMaxOpen)
		store.GetDB().SetMaxIdleConns(cfg.DBMaxIdle)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	factories := []loader.Factory{
		&loader.WallexLoader{
			APIKey:  cfg.WallexAPIKey,
			Pacing:  func() backoff.BackOff { return backoff.NewConstantBackOff(cfg.Pacing) },
			Options: []exchange.Option{exchange.WithRequestTimeout(cfg.RequestTimeout)},
			Metrics: m,
		},
	}
	if store != nil {
		factories = append(factories, &loader.PostgresLoader{Store: store, Metrics: m})
	}
	loaders, err := loader.NewRegistry(factories...)
	if err != nil {
		return err
	}
	if err := render.Tree(out, loaders); err != nil {
		return err
	}

	factory, err := loader.Lookup(loaders, cfg.Loader)
	if err != nil {
		return fmt.Errorf("loader %s: %w", cfg.Loader, err)
	}
	prices, err := loader.New(factory)
	if err != nil {
		return err
	}
	dataCfg, err := dataConfig(cfg)
	if err != nil {
		return err
	}
	if _, err := prices.Load(ctx, dataCfg); err != nil {
		return err
	}
	logger.Info("Main | prices ready", zap.String("loader", prices.LoaderName()), zap.Strings("symbols", dataCfg.Symbols()))

	if cfg.Persist && cfg.Loader == "Wallex" {
		if err := persist(ctx, store, prices); err != nil {
			return err
		}
	}

	catalog, err := indicator.DefaultCatalog(kernel.Reference())
	if err != nil {
		return err
	}
	engine := indicator.NewEngine(catalog, nil, indicator.WithMetrics(m))
	data, err := indicator.NewData(engine, prices)
	if err != nil {
		return err
	}
	for _, spec := range cfg.Indicators {
		if _, err := data.Add(ctx, spec); err != nil {
			return fmt.Errorf("indicator %s: %w", spec.UserName, err)
		}
	}

	if err := render.Tree(out, engine.Results()); err != nil {
		return err
	}
	if err := render.List(out, "Indicators", engine.UserIndicators()); err != nil {
		return err
	}
	for _, name := range engine.UserIndicators() {
		table, err := data.Stacked(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", name)
		if err := render.Table(out, table, cfg.MaxRows); err != nil {
			return err
		}
	}
	return nil
}

func dataConfig(cfg config.Config) (loader.DataConfig, error) {
	data, err := loader.NewDataCfg(cfg.Interval, cfg.Symbols...)
	if err != nil {
		return nil, err
	}
	if cfg.Loader == "Postgres" {
		pc, err := loader.NewPostgresCfg(data, loader.StorageQuery{Limit: cfg.Limit, From: cfg.From, To: cfg.To, Source: cfg.Source})
		if err != nil {
			return nil, err
		}
		return pc, nil
	}
	wc, err := loader.NewWallexCfg(data, cfg.Limit)
	if err != nil {
		return nil, err
	}
	return wc, nil
}

// persist stores downloaded candles so later runs can use the Postgres loader.
func persist(ctx context.Context, store *db.Default, prices *loader.PriceData) error {
	series, err := prices.Raw()
	if err != nil {
		return err
	}
	for _, s := range series {
		if err := store.SaveCandles(ctx, s.Candles); err != nil {
			return fmt.Errorf("persist %s: %w", s.Symbol, err)
		}
	}
	utils.GetLogger().Info("Main | persisted candles", zap.Int("symbols", len(series)))
	return nil
}
