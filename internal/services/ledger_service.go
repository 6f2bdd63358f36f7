// Package services orchestrates ledger operations across the store and
// the message broker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/store"
)

// EventPublisher notifies downstream workers about ledger changes.
// *amqp.Client satisfies it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, id, op string) error
	Close() error
}

// LedgerService orchestrates transaction operations across the store
// and the broker. Publishing is best effort: a mutation that reached
// the store never fails because the broker is down.
type LedgerService struct {
	storage         store.Repository
	publisher       EventPublisher
	defaultAccounts []string
}

func NewLedgerService(storage store.Repository, publisher EventPublisher, defaultAccounts []string) *LedgerService {
	return &LedgerService{
		storage:         storage,
		publisher:       publisher,
		defaultAccounts: defaultAccounts,
	}
}

// Submit validates and stores a new transaction, then publishes a
// created event.
func (s *LedgerService) Submit(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	id, err := s.storage.Append(ctx, t)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, id, amqp.OpCreated)
	return id, nil
}

// Edit validates and replaces the transaction with the given id.
func (s *LedgerService) Edit(ctx context.Context, id string, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.storage.Update(ctx, id, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publishEvent(ctx, id, amqp.OpUpdated)
	return nil
}

// Remove deletes the transaction with the given id. Removing an id that
// is already gone succeeds.
func (s *LedgerService) Remove(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishEvent(ctx, id, amqp.OpDeleted)
	return nil
}

// Query builds the ledger view for a period and category from a fresh
// snapshot of the store.
func (s *LedgerService) Query(ctx context.Context, year, month int, category string) (core.LedgerView, error) {
	txs, err := s.storage.Load(ctx)
	if err != nil {
		return core.LedgerView{}, fmt.Errorf("load transactions: %w", err)
	}
	return core.BuildLedgerView(txs, year, month, category), nil
}

// Transactions returns every stored transaction, dated or not.
func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}

// Accounts returns the configured defaults plus every account observed
// in the store, in first-seen order.
func (s *LedgerService) Accounts(ctx context.Context) ([]string, error) {
	txs, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.Accounts(s.defaultAccounts, txs), nil
}

func (s *LedgerService) publishEvent(ctx context.Context, id, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"id", id, "op", op, "error", err)
	}
}

// Close closes both storage and broker connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
