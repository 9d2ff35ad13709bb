package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/config"
	"github.com/lanscope/lanscope/internal/event"
	"github.com/lanscope/lanscope/internal/perf"
	"github.com/lanscope/lanscope/internal/registry"
	"github.com/lanscope/lanscope/internal/report"
	"github.com/lanscope/lanscope/internal/server"
	"github.com/lanscope/lanscope/internal/store"
	"github.com/lanscope/lanscope/internal/sweep"
	"github.com/lanscope/lanscope/internal/vault"
	"github.com/lanscope/lanscope/internal/version"
	"github.com/lanscope/lanscope/pkg/plugin"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("LANScope starting", zap.String("version", version.Short()))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	dbPath := cfg.GetString("store.path")
	if dbPath == "" {
		dbPath = "lanscope.db"
	}
	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	bus := event.NewBus(logger)
	reg := registry.New(logger)

	// Compile-time module composition. The report module reads from sweep
	// and perf, so those are constructed first and handed in directly.
	sweepMod := sweep.New()
	perfMod := perf.New()

	modules := []plugin.Module{
		sweepMod,
		perfMod,
		vault.New(),
	}
	for _, m := range modules {
		if err := reg.Register(m); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := func(name string) plugin.Deps {
		return plugin.Deps{
			Config: cfg,
			Logger: logger.Named(name),
			Store:  db,
			Bus:    bus,
		}
	}
	if err := reg.InitAll(ctx, deps); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}

	// The report module depends on the sweep and perf modules being
	// initialized, so it joins the registry after InitAll has run on them.
	reportMod := report.New(sweepMod.Sweeper(), perfMod)
	if err := reg.Register(reportMod); err != nil {
		logger.Fatal("failed to register module", zap.Error(err))
	}
	if err := reportMod.Init(ctx, deps("report")); err != nil {
		logger.Fatal("failed to initialize report module", zap.Error(err))
	}

	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	addr := cfg.GetString("server.host") + ":" + cfg.GetString("server.port")
	srv := server.New(addr, reg, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("LANScope ready", zap.String("addr", addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	reg.StopAll(shutdownCtx)

	logger.Info("LANScope stopped")
}
