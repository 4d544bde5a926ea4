// Command simple-message-broker runs the broker behind an HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	broker "github.com/jdziat/simple-message-broker"
	"github.com/jdziat/simple-message-broker/httpd"
	"github.com/jdziat/simple-message-broker/pkg/schedule"
	"github.com/jdziat/simple-message-broker/pkg/stats"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port number")
	maxQueues := flag.Int("max-queues", 100, "maximum number of queues (0 = unbounded)")
	maxMessages := flag.Int("max-messages-per-queue", 10_000, "maximum messages per queue (0 = unbounded)")
	maxWait := flag.Duration("max-wait", time.Minute, "longest a dequeue may block")
	statsDB := flag.String("stats-db", "", "SQLite file for stats history (empty = stats disabled)")
	statsCron := flag.String("stats-cron", "", "cron expression for stats snapshots (default: every minute)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	if err := run(logger, *port, *maxQueues, *maxMessages, *maxWait, *statsDB, *statsCron); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, port, maxQueues, maxMessages int, maxWait time.Duration, statsDB, statsCron string) error {
	b := broker.New(
		broker.WithMaxQueues(maxQueues),
		broker.WithMaxMessagesPerQueue(maxMessages),
		broker.WithMaxWait(maxWait),
		broker.WithLogger(logger),
	)

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()

	if statsDB != "" {
		db, err := gorm.Open(sqlite.Open(statsDB), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("open stats db: %w", err)
		}
		store := stats.NewGormStorage(db)
		if err := store.Migrate(collectorCtx); err != nil {
			return fmt.Errorf("migrate stats db: %w", err)
		}

		collectorOpts := []stats.CollectorOption{stats.WithCollectorLogger(logger)}
		if statsCron != "" {
			cadence, err := schedule.Cron(statsCron)
			if err != nil {
				return fmt.Errorf("parse stats-cron: %w", err)
			}
			collectorOpts = append(collectorOpts, stats.WithCadence(cadence))
		}

		collector := stats.NewCollector(b, store, collectorOpts...)
		go collector.Start(collectorCtx)
		logger.Info("stats collection enabled", "db", statsDB)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: httpd.Handler(b, httpd.WithLogger(logger)),
	}
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	signalCh := make(chan os.Signal, 2)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	<-signalCh
	logger.Info("shutting down")

	// Wake blocked long-polls before tearing the server down, and give the
	// stats collector its final flush.
	b.Close()
	stopCollector()

	shutdownCtx, release := context.WithTimeout(context.Background(), 10*time.Second)
	defer release()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
