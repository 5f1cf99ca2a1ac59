package handlers

import (
	"net/http"
	"strings"

	"ledger/internal/config"
	"ledger/internal/middleware"
	"ledger/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	cfg      config.Config
	users    UserStore
	service  AccountService
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *zap.Logger
}

func New(cfg config.Config, users UserStore, service AccountService, hub *websocket.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		users:    users,
		service:  service,
		hub:      hub,
		upgrader: websocket.Upgrader(allowedOrigins(cfg.AllowedOrigins)),
		logger:   logger,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(h.logger.Named("http")))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", h.CreateUser)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.cfg.JWTSecret))
			r.Get("/auth/me", h.Me)
			r.Get("/users", h.ListUsers)
			r.Post("/users/deposit", h.Deposit)
			r.Post("/users/transfer", h.Transfer)
			r.Get("/users/{id}", h.GetUser)
			r.Get("/users/{id}/balance", h.GetBalance)
			r.Get("/users/{id}/transactions", h.ListUserTransactions)
			r.Get("/transactions", h.ListTransactions)
			r.Get("/audit", h.ListAudit)
		})
	})
	router.Get("/ws/balances", h.WSBalances)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
