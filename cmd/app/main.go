package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"overlay/cfg"
	"overlay/db"
	"overlay/internal/app/api"
	"overlay/internal/app/metrics"
	"overlay/internal/app/processor"
	"overlay/internal/app/state"
	"overlay/pkg/render"
	"overlay/pkg/scripts"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "cfg-path", "cfg/cfg.yaml", "path to config file")
	flag.Parse()

	config, err := cfg.Load(cfgPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	metrics.Register(prometheus.DefaultRegisterer)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := newStore(ctx, &config.DB)
	if err != nil {
		log.Fatal("failed to init snapshot store: ", err)
	}

	stateKey := config.Pipeline.StateKey
	if stateKey == "" {
		stateKey = "widget"
	}

	st, err := state.New(ctx, logger, store, stateKey)
	if err != nil {
		log.Fatal("failed to init state: ", err)
	}

	var hook *scripts.Hook
	if config.Pipeline.ScriptPath != "" {
		hook, err = scripts.Load(config.Pipeline.ScriptPath)
		if err != nil {
			log.Fatal("failed to load message script: ", err)
		}
		defer hook.Close()
	}

	proc := processor.New(logger, st, render.New(config.Pipeline.Provider), hook)

	if err := api.NewAPI(&config.Api, logger, proc, st).Run(ctx); err != nil {
		logger.Error("api stopped", "err", err)
	}
}

func newStore(ctx context.Context, cfg *db.Config) (state.Store, error) {
	if cfg.ConnStr != "" {
		return db.New(ctx, cfg)
	}

	path := cfg.Path
	if path == "" {
		path = "overlay.db"
	}

	return db.NewSQLite(ctx, path)
}
