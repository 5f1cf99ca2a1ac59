package services

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/store"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrPersistence      = errors.New("persistence failure")
)

// classify turns store and driver errors into the service taxonomy. Anything
// unrecognised is a persistence failure and keeps its cause in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, store.ErrDuplicate):
		return ErrDuplicateAccount
	case errors.Is(err, ErrInvalidAmount):
		return ErrInvalidAmount
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}
