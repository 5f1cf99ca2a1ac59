package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"ledger/internal/auth"
	"ledger/internal/config"
	"ledger/internal/models"
	"ledger/internal/services"
	"ledger/internal/websocket"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type stubUserStore struct {
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

type stubService struct {
	listUsersFn            func(ctx context.Context) ([]models.User, error)
	getUserFn              func(ctx context.Context, userID string) (models.User, error)
	createUserFn           func(ctx context.Context, req services.CreateUserRequest) (models.User, error)
	depositFn              func(ctx context.Context, req services.DepositRequest) (models.User, error)
	transferFn             func(ctx context.Context, req services.TransferRequest) (models.Transaction, error)
	checkBalanceFn         func(ctx context.Context, userID, currency string) (decimal.Decimal, error)
	listTransactionsFn     func(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	listUserTransactionsFn func(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
	listAuditFn            func(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

func (s stubService) ListUsers(ctx context.Context) ([]models.User, error) {
	if s.listUsersFn == nil {
		return nil, nil
	}
	return s.listUsersFn(ctx)
}

func (s stubService) GetUser(ctx context.Context, userID string) (models.User, error) {
	if s.getUserFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getUserFn(ctx, userID)
}

func (s stubService) CreateUser(ctx context.Context, req services.CreateUserRequest) (models.User, error) {
	if s.createUserFn == nil {
		return models.User{ID: "user-1", Username: req.Username, Email: req.Email, Balance: services.SeedAmount}, nil
	}
	return s.createUserFn(ctx, req)
}

func (s stubService) Deposit(ctx context.Context, req services.DepositRequest) (models.User, error) {
	if s.depositFn == nil {
		return models.User{ID: req.UserID}, nil
	}
	return s.depositFn(ctx, req)
}

func (s stubService) Transfer(ctx context.Context, req services.TransferRequest) (models.Transaction, error) {
	if s.transferFn == nil {
		return models.Transaction{}, nil
	}
	return s.transferFn(ctx, req)
}

func (s stubService) CheckBalance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	if s.checkBalanceFn == nil {
		return decimal.Zero, nil
	}
	return s.checkBalanceFn(ctx, userID, currency)
}

func (s stubService) ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if s.listTransactionsFn == nil {
		return nil, nil
	}
	return s.listTransactionsFn(ctx, limit, offset)
}

func (s stubService) ListUserTransactions(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	if s.listUserTransactionsFn == nil {
		return nil, nil
	}
	return s.listUserTransactionsFn(ctx, userID, limit, offset)
}

func (s stubService) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	if s.listAuditFn == nil {
		return nil, nil
	}
	return s.listAuditFn(ctx, limit, offset)
}

func newTestHandler(users UserStore, service AccountService) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	logger := zap.NewNop()
	return New(cfg, users, service, websocket.NewHub(logger), logger)
}

// serve routes a request through the full router. A non-empty userID adds a
// bearer token for that user.
func serve(t *testing.T, handler *Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := auth.GenerateToken("secret", userID, time.Minute)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}
