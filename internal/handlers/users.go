package handlers

import (
	"net/http"

	"ledger/internal/middleware"
	"ledger/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, newUserResponse(user))
	}
	respondJSON(w, r, http.StatusOK, out)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newUserResponse(user))
}

type depositRequest struct {
	User   string          `json:"user"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.User == "" {
		respondError(w, r, http.StatusBadRequest, "invalid payload")
		return
	}
	actorID, _ := middleware.UserIDFromContext(r.Context())
	user, err := h.service.Deposit(r.Context(), services.DepositRequest{
		ActorID: actorID,
		UserID:  req.User,
		Amount:  req.Amount,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newUserResponse(user))
}

type transferRequest struct {
	Sender         string          `json:"sender"`
	Receiver       string          `json:"receiver"`
	SourceCurrency string          `json:"source_currency"`
	TargetCurrency string          `json:"target_currency"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	Amount         decimal.Decimal `json:"amount"`
}

// Transfer answers 200 for both settled and declined transfers; the
// success flag of the recorded transaction tells them apart.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Sender == "" || req.Receiver == "" {
		respondError(w, r, http.StatusBadRequest, "invalid payload")
		return
	}
	actorID, _ := middleware.UserIDFromContext(r.Context())
	record, err := h.service.Transfer(r.Context(), services.TransferRequest{
		ActorID:        actorID,
		Sender:         req.Sender,
		Receiver:       req.Receiver,
		SourceCurrency: normalizeCurrency(req.SourceCurrency),
		TargetCurrency: normalizeCurrency(req.TargetCurrency),
		ExchangeRate:   req.ExchangeRate,
		Amount:         req.Amount,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newTransactionResponse(record))
}

func (h *Handler) ListUserTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset := parsePaging(query.Get("page"), query.Get("limit"))
	records, err := h.service.ListUserTransactions(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newTransactionResponses(records))
}
