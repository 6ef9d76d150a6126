package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"overlay/cfg"
	"overlay/internal/app/ingest"
	"overlay/pkg/twitch"
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

	if config.Twitch.Channel == "" {
		log.Fatal("twitch.channel is not configured")
	}

	client, err := twitch.New(&config.Twitch)
	if err != nil {
		log.Fatal("failed to create twitch client: ", err)
	}

	broadcasterID, err := client.BroadcasterID(config.Twitch.Channel)
	if err != nil {
		log.Fatal("failed to resolve broadcaster: ", err)
	}

	badgeURLs, err := client.BadgeURLs(broadcasterID)
	if err != nil {
		log.Fatal("failed to fetch badge art: ", err)
	}

	submitter := ingest.NewHTTPSubmitter(&http.Client{Timeout: 30 * time.Second}, config.Ingest.AppURL)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service := ingest.NewService(logger, config.Twitch.Channel, badgeURLs, submitter)
	if err := service.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("ingest stopped", "err", err)
	}
}
