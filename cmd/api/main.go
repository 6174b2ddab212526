package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apianalysis "screener_valuation/pkg/api/analysis"
	"screener_valuation/pkg/core/analysis"
	"screener_valuation/pkg/core/config"
	"screener_valuation/pkg/core/logging"
	"screener_valuation/pkg/core/store"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Extractor and engine
	ex, err := cfg.Extractor(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build extractor")
	}
	engine := analysis.NewEngine(ex, cfg.Assumptions, log)

	// 2. Report store
	repo, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open report store")
	}
	defer repo.Close()

	// 3. Routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	apianalysis.NewHandlers(engine, repo, cfg.Server.MaxUploadMB, log).Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("store", cfg.Store.Driver).
		Msg("API server starting (POST /api/analyze, GET /api/reports/{id}, GET /api/reports/{id}/html, GET /healthz)")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
