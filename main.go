package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"beehive/backend/internal/config"
	"beehive/backend/internal/journal"
	"beehive/backend/internal/server"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON config file")
	listen      = flag.String("listen", "", "Listen address (overrides config)")
	journalPath = flag.String("journal", "", "sqlite journal path (overrides config)")
	seed        = flag.Int64("seed", 0, "Random seed, 0 for time based (overrides config)")
)

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *journalPath != "" {
		cfg.JournalPath = *journalPath
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	return cfg, cfg.Validate()
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var j *journal.Journal
	if cfg.JournalPath != "" {
		if j, err = journal.Open(cfg.JournalPath); err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer j.Close()
	}

	srv, err := server.New(cfg, j)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.Run(ctx)

	httpServer := &http.Server{Addr: cfg.Listen, Handler: srv.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	log.Println("Server listening on", cfg.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("HTTP server error: %v", err)
	}
	log.Println("Server stopped")
}
