package services

import (
	"context"
	"encoding/json"

	"ledger/internal/db"
	"ledger/internal/models"
	"ledger/internal/money"
	"ledger/internal/store"
	"ledger/internal/validator"
	"ledger/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BaseCurrency is the currency of deposits and of the seed credit.
const BaseCurrency = "USD"

// SeedAmount is credited to every new account through a self-transfer.
var SeedAmount = decimal.NewFromInt(1000)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.UserInput) error
	GetByID(ctx context.Context, userID string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	AdjustBalance(ctx context.Context, tx store.Execer, userID string, delta decimal.Decimal) error
}

type TransactionLog interface {
	Append(ctx context.Context, tx store.Execer, input store.TransactionInput) (models.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// TransferEngine owns the settlement rules: the seed credit, deposits and
// transfers. Each operation records exactly one transaction and applies its
// balance changes in the same database transaction.
type TransferEngine struct {
	txRunner db.TxRunner
	accounts AccountStore
	log      TransactionLog
	audit    AuditStore
	hub      BalanceHub
	locks    *accountLocks
	logger   *zap.Logger
}

func NewTransferEngine(txRunner db.TxRunner, accounts AccountStore, log TransactionLog, audit AuditStore, hub BalanceHub, logger *zap.Logger) *TransferEngine {
	return &TransferEngine{
		txRunner: txRunner,
		accounts: accounts,
		log:      log,
		audit:    audit,
		hub:      hub,
		locks:    newAccountLocks(),
		logger:   logger,
	}
}

type DepositRequest struct {
	ActorID string
	UserID  string
	Amount  decimal.Decimal
}

type TransferRequest struct {
	ActorID        string
	Sender         string
	Receiver       string
	SourceCurrency string
	TargetCurrency string
	ExchangeRate   decimal.Decimal
	Amount         decimal.Decimal
}

// seed credits a freshly created account. It runs inside the creating
// transaction so the account never exists without its seed record.
func (e *TransferEngine) seed(ctx context.Context, tx *sqlx.Tx, userID string) (models.Transaction, error) {
	record, err := e.log.Append(ctx, tx, store.TransactionInput{
		Sender:         userID,
		Receiver:       userID,
		SourceCurrency: BaseCurrency,
		TargetCurrency: BaseCurrency,
		ExchangeRate:   decimal.NewFromInt(1),
		Amount:         SeedAmount,
		Success:        true,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	if err := e.accounts.AdjustBalance(ctx, tx, userID, SeedAmount); err != nil {
		return models.Transaction{}, err
	}
	return record, nil
}

// Deposit credits amount to the account. Deposits are never rejected for
// business reasons; the record is always successful.
func (e *TransferEngine) Deposit(ctx context.Context, req DepositRequest) (models.User, error) {
	if err := money.ValidateAmount(req.Amount); err != nil {
		return models.User{}, ErrInvalidAmount
	}
	unlock := e.locks.Lock(req.UserID)
	defer unlock()

	var account models.User
	var record models.Transaction
	err := e.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		account, err = e.accounts.GetForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if !money.Fits(account.Balance.Add(req.Amount)) {
			return ErrInvalidAmount
		}
		record, err = e.log.Append(ctx, tx, store.TransactionInput{
			Sender:         req.UserID,
			Receiver:       req.UserID,
			SourceCurrency: BaseCurrency,
			TargetCurrency: BaseCurrency,
			ExchangeRate:   decimal.NewFromInt(1),
			Amount:         req.Amount,
			Success:        true,
		})
		if err != nil {
			return err
		}
		if err := e.accounts.AdjustBalance(ctx, tx, req.UserID, req.Amount); err != nil {
			return err
		}
		return e.audit.Log(ctx, tx, actorOr(req.ActorID, req.UserID), "deposit", "transaction", record.ID, auditData(record))
	})
	if err != nil {
		e.logger.Error("deposit failed",
			zap.String("user_id", req.UserID),
			zap.Stringer("amount", req.Amount),
			zap.Error(err))
		return models.User{}, classify(err)
	}
	account.Balance = account.Balance.Add(req.Amount)
	e.logger.Info("deposit recorded",
		zap.String("transaction_id", record.ID),
		zap.String("user_id", req.UserID),
		zap.Stringer("amount", req.Amount))
	e.broadcast(account.ID, account.Balance)
	return account, nil
}

// Transfer moves amount*rate from sender to receiver when the sender's
// balance is strictly greater than the unconverted amount. An insufficient
// balance is not an error: the attempt is recorded with Success false and
// no balance changes.
func (e *TransferEngine) Transfer(ctx context.Context, req TransferRequest) (models.Transaction, error) {
	if !req.Amount.IsPositive() || money.ValidateAmount(req.Amount) != nil {
		return models.Transaction{}, ErrInvalidAmount
	}
	if money.ValidateRate(req.ExchangeRate) != nil {
		return models.Transaction{}, ErrInvalidRate
	}
	if validator.ValidateCurrency(req.SourceCurrency) != nil || validator.ValidateCurrency(req.TargetCurrency) != nil {
		return models.Transaction{}, ErrInvalidCurrency
	}
	converted := money.Convert(req.Amount, req.ExchangeRate)
	if !money.Fits(converted) {
		return models.Transaction{}, ErrInvalidAmount
	}

	unlock := e.locks.Lock(req.Sender, req.Receiver)
	defer unlock()

	var record models.Transaction
	var senderAfter, receiverAfter decimal.Decimal
	err := e.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		sender, receiver, err := lockPair(ctx, tx, e.accounts, req.Sender, req.Receiver)
		if err != nil {
			return err
		}
		valid := sender.Balance.GreaterThan(req.Amount)
		if valid && req.Sender != req.Receiver && !money.Fits(receiver.Balance.Add(converted)) {
			return ErrInvalidAmount
		}
		record, err = e.log.Append(ctx, tx, store.TransactionInput{
			Sender:         req.Sender,
			Receiver:       req.Receiver,
			SourceCurrency: req.SourceCurrency,
			TargetCurrency: req.TargetCurrency,
			ExchangeRate:   req.ExchangeRate,
			Amount:         converted,
			Success:        valid,
		})
		if err != nil {
			return err
		}
		senderAfter, receiverAfter = sender.Balance, receiver.Balance
		if valid {
			if err := e.accounts.AdjustBalance(ctx, tx, req.Sender, converted.Neg()); err != nil {
				return err
			}
			if err := e.accounts.AdjustBalance(ctx, tx, req.Receiver, converted); err != nil {
				return err
			}
			if req.Sender != req.Receiver {
				senderAfter = sender.Balance.Sub(converted)
				receiverAfter = receiver.Balance.Add(converted)
			}
		}
		return e.audit.Log(ctx, tx, actorOr(req.ActorID, req.Sender), "transfer", "transaction", record.ID, auditData(record))
	})
	if err != nil {
		e.logger.Error("transfer failed",
			zap.String("sender", req.Sender),
			zap.String("receiver", req.Receiver),
			zap.Stringer("amount", req.Amount),
			zap.Error(err))
		return models.Transaction{}, classify(err)
	}
	if !record.Success {
		e.logger.Info("transfer declined: insufficient balance",
			zap.String("transaction_id", record.ID),
			zap.String("sender", req.Sender),
			zap.Stringer("amount", req.Amount))
		return record, nil
	}
	e.logger.Info("transfer settled",
		zap.String("transaction_id", record.ID),
		zap.String("sender", req.Sender),
		zap.String("receiver", req.Receiver),
		zap.Stringer("converted_amount", converted))
	e.broadcast(req.Sender, senderAfter)
	if req.Receiver != req.Sender {
		e.broadcast(req.Receiver, receiverAfter)
	}
	return record, nil
}

func (e *TransferEngine) broadcast(userID string, balance decimal.Decimal) {
	if e.hub == nil {
		return
	}
	e.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		UserID:  userID,
		Balance: money.Format(balance),
	})
}

// lockPair row-locks both accounts in id order so concurrent transfers in
// opposite directions cannot deadlock.
func lockPair(ctx context.Context, tx store.Getter, accounts AccountStore, senderID, receiverID string) (models.User, models.User, error) {
	if senderID == receiverID {
		account, err := accounts.GetForUpdate(ctx, tx, senderID)
		return account, account, err
	}
	firstID, secondID := senderID, receiverID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := accounts.GetForUpdate(ctx, tx, firstID)
	if err != nil {
		return models.User{}, models.User{}, err
	}
	second, err := accounts.GetForUpdate(ctx, tx, secondID)
	if err != nil {
		return models.User{}, models.User{}, err
	}
	if firstID == senderID {
		return first, second, nil
	}
	return second, first, nil
}

func actorOr(actorID, fallback string) string {
	if actorID != "" {
		return actorID
	}
	return fallback
}

func auditData(record models.Transaction) string {
	data, _ := json.Marshal(map[string]any{
		"transaction_id": record.ID,
		"sender":         record.Sender,
		"receiver":       record.Receiver,
		"amount":         record.Amount.String(),
		"success":        record.Success,
	})
	return string(data)
}
