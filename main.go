package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielhkuo/pollhall/cliparse"
	"github.com/danielhkuo/pollhall/db"
	"github.com/danielhkuo/pollhall/router"
	"github.com/danielhkuo/pollhall/views"
)

func main() {
	var err error

	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Connect and verify
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Apply migrations
	if err := db.Migrate(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	view, err := views.New()
	if err != nil {
		slog.Error("template parsing failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, view)

	// Create server
	server := http.Server{
		Handler:           mux,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "media_root", cfg.MediaRoot, "debug", cfg.Debug)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
