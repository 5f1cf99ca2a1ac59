package handlers

import (
	"net/http"
	"strings"

	"ledger/internal/auth"
	"ledger/internal/money"
	"ledger/internal/websocket"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	currency := normalizeCurrency(r.URL.Query().Get("currency"))
	balance, err := h.service.CheckBalance(r.Context(), userID, currency)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{
		"user_id": userID,
		"balance": money.Format(balance),
	})
}

// WSBalances upgrades to a websocket that receives the caller's balance
// after every deposit or settled transfer. Browsers cannot set headers on
// the upgrade, so the token may come from the query string.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, r, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, r, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.upgrader, h.hub, claims.UserID)
}
