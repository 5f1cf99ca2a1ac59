package handlers

import (
	"errors"
	"net/http"
	"time"

	"ledger/internal/models"
	"ledger/internal/money"
	"ledger/internal/services"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels onto status codes. Persistence
// failures are logged with their cause and reported without it.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		respondError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateAccount):
		respondError(w, r, http.StatusConflict, "username or email already exists")
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidRate),
		errors.Is(err, services.ErrInvalidCurrency):
		respondError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, r, http.StatusInternalServerError, "internal error")
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Balance:   money.Format(user.Balance),
		CreatedAt: user.CreatedAt,
	}
}

type transactionResponse struct {
	ID             string    `json:"id"`
	Sender         string    `json:"sender"`
	Receiver       string    `json:"receiver"`
	SourceCurrency string    `json:"source_currency"`
	TargetCurrency string    `json:"target_currency"`
	ExchangeRate   string    `json:"exchange_rate"`
	Amount         string    `json:"amount"`
	Success        bool      `json:"success"`
	CreatedAt      time.Time `json:"created_at"`
}

func newTransactionResponse(record models.Transaction) transactionResponse {
	return transactionResponse{
		ID:             record.ID,
		Sender:         record.Sender,
		Receiver:       record.Receiver,
		SourceCurrency: record.SourceCurrency,
		TargetCurrency: record.TargetCurrency,
		ExchangeRate:   record.ExchangeRate.String(),
		Amount:         money.Format(record.Amount),
		Success:        record.Success,
		CreatedAt:      record.CreatedAt,
	}
}

func newTransactionResponses(records []models.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(records))
	for _, record := range records {
		out = append(out, newTransactionResponse(record))
	}
	return out
}
