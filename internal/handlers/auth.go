package handlers

import (
	"errors"
	"net/http"

	"ledger/internal/auth"
	"ledger/internal/middleware"
	"ledger/internal/services"
	"ledger/internal/store"
	"ledger/internal/validator"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUser registers an account. The new account starts with the seed
// balance and a token is issued so the caller can act immediately.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.Registration(req.Username, req.Email, req.Password); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to secure password")
		return
	}
	user, err := h.service.CreateUser(r.Context(), services.CreateUserRequest{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, r, http.StatusCreated, map[string]string{
		"id":    user.ID,
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login lookup", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenTTL)
	if err != nil {
		h.logger.Error("generate token", zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{
		"token": token,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newUserResponse(user))
}
