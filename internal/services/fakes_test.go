package services

import (
	"context"
	"sync"
	"time"

	"ledger/internal/models"
	"ledger/internal/store"
	"ledger/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubAccountStore struct {
	createFn        func(ctx context.Context, tx store.Execer, input store.UserInput) error
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
	listFn          func(ctx context.Context) ([]models.User, error)
	getForUpdateFn  func(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	adjustBalanceFn func(ctx context.Context, tx store.Execer, userID string, delta decimal.Decimal) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, input store.UserInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubAccountStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

func (s stubAccountStore) List(ctx context.Context) ([]models.User, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error) {
	return s.getForUpdateFn(ctx, tx, userID)
}

func (s stubAccountStore) AdjustBalance(ctx context.Context, tx store.Execer, userID string, delta decimal.Decimal) error {
	if s.adjustBalanceFn == nil {
		return nil
	}
	return s.adjustBalanceFn(ctx, tx, userID, delta)
}

type stubTransactionLog struct {
	appendFn func(ctx context.Context, tx store.Execer, input store.TransactionInput) (models.Transaction, error)
}

func (s stubTransactionLog) Append(ctx context.Context, tx store.Execer, input store.TransactionInput) (models.Transaction, error) {
	if s.appendFn == nil {
		return recordFrom("tx-1", input), nil
	}
	return s.appendFn(ctx, tx, input)
}

func (s stubTransactionLog) List(context.Context, int, int) ([]models.Transaction, error) {
	return nil, nil
}

func (s stubTransactionLog) ListByUser(context.Context, string, int, int) ([]models.Transaction, error) {
	return nil, nil
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(context.Context, int, int) ([]models.AuditLog, error) {
	return nil, nil
}

type stubHub struct {
	mu    sync.Mutex
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, update)
}

func (s *stubHub) updates() []websocket.BalanceUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]websocket.BalanceUpdate(nil), s.calls...)
}

func recordFrom(id string, input store.TransactionInput) models.Transaction {
	return models.Transaction{
		ID:             id,
		Sender:         input.Sender,
		Receiver:       input.Receiver,
		SourceCurrency: input.SourceCurrency,
		TargetCurrency: input.TargetCurrency,
		ExchangeRate:   input.ExchangeRate,
		Amount:         input.Amount,
		Success:        input.Success,
		CreatedAt:      time.Now().UTC(),
	}
}

// memLedger keeps accounts, transactions and audit rows in memory so the
// engine and facade can be exercised end to end without Postgres.
type memLedger struct {
	mu           sync.Mutex
	users        map[string]models.User
	order        []string
	transactions []models.Transaction
	audit        []models.AuditLog
}

func newMemLedger() *memLedger {
	return &memLedger{users: make(map[string]models.User)}
}

func (m *memLedger) Create(_ context.Context, _ store.Execer, input store.UserInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == input.Username || user.Email == input.Email {
			return store.ErrDuplicate
		}
	}
	if _, ok := m.users[input.ID]; ok {
		return store.ErrDuplicate
	}
	m.users[input.ID] = models.User{
		ID:           input.ID,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Balance:      decimal.Zero,
		CreatedAt:    time.Now().UTC(),
	}
	m.order = append(m.order, input.ID)
	return nil
}

func (m *memLedger) GetByID(_ context.Context, userID string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memLedger) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]models.User, 0, len(m.order))
	for _, id := range m.order {
		users = append(users, m.users[id])
	}
	return users, nil
}

func (m *memLedger) GetForUpdate(ctx context.Context, _ store.Getter, userID string) (models.User, error) {
	return m.GetByID(ctx, userID)
}

func (m *memLedger) AdjustBalance(_ context.Context, _ store.Execer, userID string, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	user.Balance = user.Balance.Add(delta)
	m.users[userID] = user
	return nil
}

func (m *memLedger) balance(userID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].Balance
}

func (m *memLedger) log() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Transaction(nil), m.transactions...)
}

// memTransactionLog and memAuditLog give memLedger's rows their own method
// sets, since List clashes between the three store interfaces.
type memTransactionLog struct{ *memLedger }

func (m memTransactionLog) Append(_ context.Context, _ store.Execer, input store.TransactionInput) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record := recordFrom(uuid.NewString(), input)
	m.transactions = append(m.transactions, record)
	return record, nil
}

func (m memTransactionLog) List(_ context.Context, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(newestFirst(m.transactions), limit, offset), nil
}

func (m memTransactionLog) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []models.Transaction
	for _, record := range m.transactions {
		if record.Sender == userID || record.Receiver == userID {
			rows = append(rows, record)
		}
	}
	return page(newestFirst(rows), limit, offset), nil
}

type memAuditLog struct{ *memLedger }

func (m memAuditLog) Log(_ context.Context, _ store.Execer, actorID, action, entityType, entityID, data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	m.audit = append(m.audit, models.AuditLog{
		ID:          uuid.NewString(),
		ActorUserID: actor,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

func (m memAuditLog) List(_ context.Context, limit, offset int) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return page(newestFirst(m.audit), limit, offset), nil
}

func newestFirst[T any](rows []T) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return append([]T(nil), rows[offset:end]...)
}

type memFixture struct {
	ledger  *memLedger
	hub     *stubHub
	engine  *TransferEngine
	service *AccountService
}

func newMemFixture() memFixture {
	ledger := newMemLedger()
	hub := &stubHub{}
	logger := zap.NewNop()
	engine := NewTransferEngine(fakeTxRunner{}, ledger, memTransactionLog{ledger}, memAuditLog{ledger}, hub, logger)
	service := NewAccountService(fakeTxRunner{}, ledger, memTransactionLog{ledger}, memAuditLog{ledger}, engine, logger)
	return memFixture{ledger: ledger, hub: hub, engine: engine, service: service}
}
