package services

import (
	"context"
	"encoding/json"

	"ledger/internal/db"
	"ledger/internal/models"
	"ledger/internal/store"
	"ledger/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService is the boundary the HTTP layer calls. It composes the
// account store, the transaction log and the transfer engine.
type AccountService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionLog
	audit        AuditStore
	engine       *TransferEngine
	logger       *zap.Logger
}

func NewAccountService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionLog, audit AuditStore, engine *TransferEngine, logger *zap.Logger) *AccountService {
	return &AccountService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		audit:        audit,
		engine:       engine,
		logger:       logger,
	}
}

type CreateUserRequest struct {
	Username     string
	Email        string
	PasswordHash string
}

func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.accounts.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return users, nil
}

func (s *AccountService) GetUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, classify(err)
	}
	return user, nil
}

// CreateUser creates the account and its seed self-transfer atomically.
func (s *AccountService) CreateUser(ctx context.Context, req CreateUserRequest) (models.User, error) {
	userID := uuid.NewString()
	var seed models.Transaction
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.accounts.Create(ctx, tx, store.UserInput{
			ID:           userID,
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: req.PasswordHash,
		}); err != nil {
			return err
		}
		var err error
		seed, err = s.engine.seed(ctx, tx, userID)
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"user_id":             userID,
			"seed_transaction_id": seed.ID,
		})
		return s.audit.Log(ctx, tx, userID, "create_user", "user", userID, string(data))
	})
	if err != nil {
		s.logger.Warn("create user failed", zap.String("username", req.Username), zap.Error(err))
		return models.User{}, classify(err)
	}
	s.logger.Info("user created", zap.String("user_id", userID), zap.String("seed_transaction_id", seed.ID))
	return models.User{
		ID:        userID,
		Username:  req.Username,
		Email:     req.Email,
		Balance:   SeedAmount,
		CreatedAt: seed.CreatedAt,
	}, nil
}

func (s *AccountService) Deposit(ctx context.Context, req DepositRequest) (models.User, error) {
	return s.engine.Deposit(ctx, req)
}

func (s *AccountService) Transfer(ctx context.Context, req TransferRequest) (models.Transaction, error) {
	return s.engine.Transfer(ctx, req)
}

// CheckBalance returns the account balance. Balances are not kept per
// currency, so a well-formed currency code does not change the result.
func (s *AccountService) CheckBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	if currency != "" && validator.ValidateCurrency(currency) != nil {
		return decimal.Zero, ErrInvalidCurrency
	}
	user, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return user.Balance, nil
}

func (s *AccountService) ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	rows, err := s.transactions.List(ctx, limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

func (s *AccountService) ListUserTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if _, err := s.accounts.GetByID(ctx, userID); err != nil {
		return nil, classify(err)
	}
	rows, err := s.transactions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

func (s *AccountService) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	rows, err := s.audit.List(ctx, limit, offset)
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}
