package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/kaiten-webhooks/internal/config"
	"github.com/garyjia/kaiten-webhooks/internal/dispatch"
	"github.com/garyjia/kaiten-webhooks/internal/event"
	"github.com/garyjia/kaiten-webhooks/internal/server"
	"github.com/garyjia/kaiten-webhooks/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to yaml config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Kaiten Webhook Server",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	srv := server.New(cfg, logger)

	// Every received event is logged regardless of kind. Application-specific
	// handlers are registered here, or by embedding server.Server elsewhere.
	srv.OnAny(dispatch.Func("event-audit", func(ctx context.Context, ev *event.Event) error {
		logger.Info("Event received",
			zap.String("event_kind", ev.Kind),
			zap.String("author", ev.AuthorName()),
			zap.String("delivery_id", ev.DeliveryID))
		return nil
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
