package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/stocks/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	logger, err := setupLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Printf("setting up logger: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watch, err := service.NewWatch(ctx, &service.WatchConfig{
		Symbols:           cfg.Symbols,
		UpdateInterval:    time.Duration(cfg.UpdateInterval) * time.Second,
		UserAgent:         cfg.UserAgent,
		ChartURL:          cfg.ChartBaseURL,
		SearchURL:         cfg.SearchBaseURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		DBEndpoint:        cfg.DBEndpoint,
		DBUser:            cfg.DBUser,
		DBPass:            cfg.DBPass,
		Logger:            logger,
	})
	if err != nil {
		logger.Error().Msgf("creating watch service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	watch.Run(ctx)
}
