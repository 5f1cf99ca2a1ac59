package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. The balance is a single scalar; it is not
// segregated by currency.
type User struct {
	ID           string          `db:"id" json:"id"`
	Username     string          `db:"username" json:"username"`
	Email        string          `db:"email" json:"email"`
	PasswordHash string          `db:"password_hash" json:"-"`
	Balance      decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Transaction is an immutable record of an attempted money movement. Failed
// attempts are recorded with Success set to false.
type Transaction struct {
	ID             string          `db:"id" json:"id"`
	Sender         string          `db:"sender" json:"sender"`
	Receiver       string          `db:"receiver" json:"receiver"`
	SourceCurrency string          `db:"source_currency" json:"source_currency"`
	TargetCurrency string          `db:"target_currency" json:"target_currency"`
	ExchangeRate   decimal.Decimal `db:"exchange_rate" json:"exchange_rate"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Success        bool            `db:"success" json:"success"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type AuditLog struct {
	ID          string    `db:"id" json:"id"`
	ActorUserID *string   `db:"actor_user_id" json:"actor_user_id,omitempty"`
	Action      string    `db:"action" json:"action"`
	EntityType  string    `db:"entity_type" json:"entity_type"`
	EntityID    string    `db:"entity_id" json:"entity_id"`
	Data        string    `db:"data" json:"data"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
