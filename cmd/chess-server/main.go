// Package main runs the chess clock HTTP server. The "db" subcommand
// administers the sqlite game archive.
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

	"chessclock/cmd/chess-server/cli"
	"chessclock/internal/config"
	"chessclock/internal/http"
	"chessclock/internal/obslog"
	"chessclock/internal/processor"
	"chessclock/internal/service"
	"chessclock/internal/storage"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "db: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chess-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "Path to YAML config file")
		host        = flag.String("host", "", "API server host")
		port        = flag.Int("port", 0, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		storagePath = flag.String("storage-path", "", "SQLite archive path (archive disabled if empty)")
		clock       = flag.Int("clock", 0, "Default seconds per side")
		seats       = flag.Bool("seats", false, "Require seat tokens on moves")
		logLevel    = flag.String("log-level", "", "debug, info, warn or error")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// Flags given explicitly win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Server.Host = *host
		case "port":
			cfg.Server.Port = *port
		case "dev":
			cfg.Server.Dev = *dev
		case "storage-path":
			cfg.Storage.Path = *storagePath
		case "clock":
			cfg.Game.ClockSeconds = *clock
		case "seats":
			cfg.Game.RequireSeatTokens = *seats
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *pidLock && *pidPath == "" {
		return fmt.Errorf("-pid-lock requires -pid")
	}

	if err := obslog.Init(obslog.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Console: cfg.Log.Console,
	}); err != nil {
		return err
	}
	defer obslog.Sync()
	log := obslog.L().Named("main")

	if *pidPath != "" {
		release, err := writePIDFile(*pidPath, *pidLock)
		if err != nil {
			return err
		}
		defer release()
		log.Info("PID file written", zap.String("path", *pidPath), zap.Bool("lock", *pidLock))
	}

	var store *storage.Store
	if cfg.Storage.Path != "" {
		store, err = storage.NewStore(cfg.Storage.Path, cfg.Storage.WAL)
		if err != nil {
			return err
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			return err
		}
		log.Info("archive enabled", zap.String("path", cfg.Storage.Path))
	} else {
		log.Info("archive disabled (use -storage-path to enable)")
	}

	svc, err := service.New(store, service.Options{
		ClockSeconds: cfg.Game.ClockSeconds,
		TickInterval: cfg.Game.TickInterval,
		MaxGames:     cfg.Game.MaxGames,
		FinishedTTL:  cfg.Game.FinishedTTL,
		RequireSeats: cfg.Game.RequireSeatTokens,
		SeatSecret:   cfg.Game.SeatSecret,
		SeatTTL:      cfg.Game.SeatTokenTTL,
	})
	if err != nil {
		if store != nil {
			store.Close()
		}
		return err
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go svc.RunCleanupJob(cleanupCtx, cfg.Game.CleanupInterval)

	app := http.NewFiberApp(processor.New(svc), svc, cfg.Server.Dev)

	addr := cfg.Addr()
	go func() {
		log.Info("API server starting",
			zap.String("addr", addr),
			zap.Bool("dev", cfg.Server.Dev),
			zap.Int("clock_seconds", cfg.Game.ClockSeconds),
			zap.Duration("tick_interval", cfg.Game.TickInterval),
			zap.Bool("seat_tokens", cfg.Game.RequireSeatTokens),
		)
		if err := app.Listen(addr); err != nil {
			log.Error("API server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	if err := app.ShutdownWithTimeout(gracefulShutdownTimeout); err != nil {
		log.Warn("server forced to shutdown", zap.Error(err))
	}
	cleanupCancel()
	if err := svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Warn("service shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}
