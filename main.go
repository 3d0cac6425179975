package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/stride-robotics/exosim/internal/api"
	"github.com/stride-robotics/exosim/internal/audit"
	"github.com/stride-robotics/exosim/internal/config"
	"github.com/stride-robotics/exosim/internal/monitoring"
	"github.com/stride-robotics/exosim/internal/sim"
	"github.com/stride-robotics/exosim/internal/stream"
	"github.com/stride-robotics/exosim/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode (mounts the admin debugging routes)")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	configPath = flag.String("config", "", "Path to YAML config file")
	mode       = flag.String("mode", "", "Simulation mode: gait or random (overrides config)")
	rateHz     = flag.Float64("rate", 0, "Update rate in Hz (overrides config)")
	seed       = flag.Int64("seed", 0, "Noise seed for reproducible runs (overrides config)")
)

// Main
func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Flags win over both the file and the environment.
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *rateHz != 0 {
		cfg.RateHz = *rateHz
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *devMode {
		cfg.DevMode = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if cfg.Log.File != "" {
		monitoring.UseRotatingFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	}

	engine, err := sim.NewEngine(sim.Mode(cfg.Mode), cfg.RateHz, sim.WithSeed(cfg.Seed))
	if err != nil {
		log.Fatalf("failed to create simulation engine: %v", err)
	}

	auditDB, err := audit.NewDB(cfg.AuditDB)
	if err != nil {
		log.Fatalf("failed to open audit database: %v", err)
	}
	defer auditDB.Close()

	hub := stream.NewHub(cfg.QueueSize)
	ticker := stream.NewTicker(cfg.RateHz)

	log.Printf("exosim %s (%s) starting: mode=%s rate=%.1fHz listen=%s",
		version.Version, version.GitSHA, cfg.Mode, cfg.RateHz, cfg.Listen)

	// Wait group for the producer loop and the HTTP server routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the producer routine: one tick per interval, fanned out to every
	// connected session in the same order
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := stream.Run(ctx, ticker, engine, hub); err != nil && err != context.Canceled {
			log.Printf("producer loop failed: %v", err)
		}
		log.Print("producer routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		srv := api.NewServer(engine, hub, auditDB, cfg)
		mux := srv.ServeMux()

		// mount the admin debugging routes (accessible only in dev mode)
		if cfg.DevMode {
			srv.AttachAdminRoutes(mux)
		}

		server := &http.Server{
			Addr:    cfg.Listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		// Stop accepting sessions and release the connected ones before the
		// listener closes, so every client sees a clean close.
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
