package handlers

import (
	"context"

	"ledger/internal/models"
	"ledger/internal/services"

	"github.com/shopspring/decimal"
)

// UserStore is only used for credential lookups at login.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type AccountService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, userID string) (models.User, error)
	CreateUser(ctx context.Context, req services.CreateUserRequest) (models.User, error)
	Deposit(ctx context.Context, req services.DepositRequest) (models.User, error)
	Transfer(ctx context.Context, req services.TransferRequest) (models.Transaction, error)
	CheckBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	ListUserTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	ListAudit(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}
