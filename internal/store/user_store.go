package store

import (
	"context"

	"ledger/internal/models"

	"github.com/shopspring/decimal"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

type UserInput struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// Create inserts a user with a zero balance.
func (s *UserStore) Create(ctx context.Context, tx Execer, input UserInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, balance)
		VALUES ($1, $2, $3, $4, 0)
	`, input.ID, input.Username, input.Email, input.PasswordHash)
	return translate(err)
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, balance, created_at
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return models.User{}, translate(err)
	}
	return row, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var row models.User
	err := s.db.GetContext(ctx, &row, `
		SELECT id, username, email, password_hash, balance, created_at
		FROM users
		WHERE email = $1
	`, email)
	if err != nil {
		return models.User{}, translate(err)
	}
	return row, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows := []models.User{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, username, email, balance, created_at
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetForUpdate reads a user and holds its row lock until tx ends.
func (s *UserStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.User, error) {
	var row models.User
	err := tx.GetContext(ctx, &row, `
		SELECT id, username, email, balance, created_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return models.User{}, translate(err)
	}
	return row, nil
}

// AdjustBalance adds delta to the balance. A negative result is allowed.
func (s *UserStore) AdjustBalance(ctx context.Context, tx Execer, userID string, delta decimal.Decimal) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
