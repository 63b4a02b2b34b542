package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zylo-music/zylo/internal/adapters/catalog"
	router "github.com/zylo-music/zylo/internal/adapters/http"
	"github.com/zylo-music/zylo/internal/adapters/ws"
	"github.com/zylo-music/zylo/internal/app"
	"github.com/zylo-music/zylo/internal/config"
	"github.com/zylo-music/zylo/internal/core"
	"github.com/zylo-music/zylo/internal/karaoke"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := catalog.Open(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Str("db_url", cfg.DBURL).Msg("failed to open catalog")
	}
	defer store.Close()

	hub := ws.NewHub()
	registry := core.NewRegistry()
	party := &app.Coordinator{
		Spaces:  registry,
		Catalog: store,
		Media:   router.StreamResolver{},
		Pub:     hub,
		Rooms:   hub,
	}
	ctl := &ws.Controller{
		Hub:       hub,
		Party:     party,
		ReadLimit: cfg.ReadLimit,
	}
	kara := karaoke.NewClient(cfg.KaraokeURL)

	ticker := &app.Ticker{Spaces: registry, Pub: hub, Interval: cfg.Tick}
	go ticker.Run(ctx)

	r := router.SetupRouter(ctx, cfg, ctl, store, kara)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Zylo server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
