// Package memory keeps the ledger in process memory. It backs tests and
// throwaway runs where nothing should touch disk.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"caixa/internal/core"
)

type Repository struct {
	mu  sync.RWMutex
	txs []core.Transaction
}

func NewRepository() *Repository {
	return &Repository{}
}

// NewSeeded returns a repository preloaded with the given transactions.
func NewSeeded(txs []core.Transaction) *Repository {
	r := &Repository{}
	r.txs = append(r.txs, txs...)
	return r
}

func (r *Repository) Close() error { return nil }

func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Transaction, len(r.txs))
	copy(out, r.txs)
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (r *Repository) Append(ctx context.Context, t core.Transaction) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.txs = append(r.txs, t)
	return t.ID, nil
}

func (r *Repository) Update(ctx context.Context, id string, t core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.txs {
		if r.txs[i].ID == id {
			t.ID = id
			r.txs[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.txs {
		if r.txs[i].ID == id {
			r.txs = append(r.txs[:i], r.txs[i+1:]...)
			return nil
		}
	}
	return nil
}
