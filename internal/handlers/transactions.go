package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset := parsePaging(query.Get("page"), query.Get("limit"))
	records, err := h.service.ListTransactions(r.Context(), limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, newTransactionResponses(records))
}

type auditResponse struct {
	ID          string          `json:"id"`
	ActorUserID *string         `json:"actor_user_id"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset := parsePaging(query.Get("page"), query.Get("limit"))
	rows, err := h.service.ListAudit(r.Context(), limit, offset)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	out := make([]auditResponse, 0, len(rows))
	for _, row := range rows {
		data := json.RawMessage(row.Data)
		if !json.Valid(data) {
			data = json.RawMessage("null")
		}
		out = append(out, auditResponse{
			ID:          row.ID,
			ActorUserID: row.ActorUserID,
			Action:      row.Action,
			EntityType:  row.EntityType,
			EntityID:    row.EntityID,
			Data:        data,
			CreatedAt:   row.CreatedAt,
		})
	}
	respondJSON(w, r, http.StatusOK, out)
}
