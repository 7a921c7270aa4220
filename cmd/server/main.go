package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/voxlink/signaling/internal/adapter/driven/gateway/ws"
	registry "github.com/voxlink/signaling/internal/adapter/driven/registry/memory"
	rooms "github.com/voxlink/signaling/internal/adapter/driven/rooms/memory"
	handler "github.com/voxlink/signaling/internal/adapter/driving/http"
	"github.com/voxlink/signaling/internal/config"
	"github.com/voxlink/signaling/internal/core/service"
)

func main() {
	w := zerolog.ConsoleWriter{Out: os.Stdout}
	l := zerolog.New(w).With().Timestamp().Logger()
	zlog.Logger = l

	cfg := config.Load()

	users := registry.NewRegistry()
	store := rooms.NewStore()
	hub := ws.NewHub()

	coordinator := service.NewCoordinator(users, store, hub, l)
	h := handler.NewHandler(coordinator, hub, cfg)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go coordinator.RunSweeper(sweepCtx, cfg.SweepInterval, cfg.RoomMaxAge)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h.NewRouter(),
	}

	go func() {
		l.Info().Str("addr", cfg.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	l.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopSweeper()
	hub.Stop()
	l.Info().Msg("Server exited")
}
