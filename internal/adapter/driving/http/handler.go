package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voxlink/signaling/internal/adapter/driven/gateway/ws"
	"github.com/voxlink/signaling/internal/config"
	"github.com/voxlink/signaling/internal/core/service"
)

type Handler struct {
	Coordinator *service.Coordinator
	Hub         *ws.Hub

	staticDir      string
	allowedOrigins []string
}

func NewHandler(coordinator *service.Coordinator, hub *ws.Hub, cfg config.Config) *Handler {
	return &Handler{
		Coordinator:    coordinator,
		Hub:            hub,
		staticDir:      cfg.StaticDir,
		allowedOrigins: cfg.AllowedOrigins,
	}
}

func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/ws", h.ServeWS)

	fs := http.FileServer(http.Dir(h.staticDir))
	r.Handle("/*", fs)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("signaling server is healthy"))
}
