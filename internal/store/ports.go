package store

import (
	"context"

	"caixa/internal/core"
)

// Repository persists ledger transactions. Implementations must return
// core.ErrNotFound from Get and Update when no record matches the id,
// and treat Delete of a missing id as a no-op.
type Repository interface {
	// Load returns every stored transaction in insertion order.
	Load(ctx context.Context) ([]core.Transaction, error)

	// Get returns the transaction with the given id.
	Get(ctx context.Context, id string) (core.Transaction, error)

	// Append stores a new transaction and returns its id, generating
	// one when the record carries none.
	Append(ctx context.Context, t core.Transaction) (string, error)

	// Update replaces the record with the given id. The stored id is
	// preserved regardless of the incoming record's id field.
	Update(ctx context.Context, id string, t core.Transaction) error

	// Delete removes the record with the given id if present.
	Delete(ctx context.Context, id string) error

	Close() error
}
