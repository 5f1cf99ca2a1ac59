package store

import (
	"context"
	"time"

	"ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStore is the append-only transaction log. It has no update or
// delete operations.
type TransactionStore struct {
	db  DB
	now func() time.Time
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db, now: time.Now}
}

type TransactionInput struct {
	Sender         string
	Receiver       string
	SourceCurrency string
	TargetCurrency string
	ExchangeRate   decimal.Decimal
	Amount         decimal.Decimal
	Success        bool
}

// Append assigns an id and timestamp and records the transaction.
func (s *TransactionStore) Append(ctx context.Context, tx Execer, input TransactionInput) (models.Transaction, error) {
	record := models.Transaction{
		ID:             uuid.NewString(),
		Sender:         input.Sender,
		Receiver:       input.Receiver,
		SourceCurrency: input.SourceCurrency,
		TargetCurrency: input.TargetCurrency,
		ExchangeRate:   input.ExchangeRate,
		Amount:         input.Amount,
		Success:        input.Success,
		CreatedAt:      s.now().UTC(),
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, sender, receiver, source_currency, target_currency, exchange_rate, amount, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		record.ID, record.Sender, record.Receiver, record.SourceCurrency, record.TargetCurrency,
		record.ExchangeRate, record.Amount, record.Success, record.CreatedAt,
	)
	if err != nil {
		return models.Transaction{}, err
	}
	return record, nil
}

func (s *TransactionStore) List(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	rows := []models.Transaction{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, sender, receiver, source_currency, target_currency, exchange_rate, amount, success, created_at
		FROM transactions
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByUser returns transactions where the user is sender or receiver.
func (s *TransactionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	rows := []models.Transaction{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, sender, receiver, source_currency, target_currency, exchange_rate, amount, success, created_at
		FROM transactions
		WHERE sender = $1 OR receiver = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
