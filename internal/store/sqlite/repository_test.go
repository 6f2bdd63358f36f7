package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"caixa/internal/core"
)

func TestRepositoryLifecycle(t *testing.T) {
	repo, err := NewRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	defer repo.Close()

	ctx := context.Background()

	id, err := repo.Append(ctx, core.Transaction{
		Date:          core.NewDate(2024, 6, 2),
		Description:   "Dinner",
		Type:          core.Expense,
		Category:      "Food",
		SourceAccount: "Wallet",
		Amount:        core.Money{Cents: 3200},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != "Dinner" || got.Date.ISO() != "2024-06-02" || got.Amount.Cents != 3200 {
		t.Fatalf("Get() = %+v", got)
	}

	got.Category = "Restaurants"
	if err := repo.Update(ctx, id, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	txs, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(txs) != 1 || txs[0].Category != "Restaurants" {
		t.Fatalf("Load() = %+v", txs)
	}

	if err := repo.Update(ctx, "missing", got); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("repeated Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRawDateSurvivesRoundTrip(t *testing.T) {
	repo, err := NewRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	defer repo.Close()

	id, err := repo.Append(context.Background(), core.Transaction{
		RawDate:       "sometime in May",
		Description:   "Undated purchase",
		Type:          core.Expense,
		Category:      "Other",
		SourceAccount: "Wallet",
		Amount:        core.Money{Cents: 500},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Date.IsKnown() {
		t.Fatal("undated record should stay undated")
	}
	if got.RawDate != "sometime in May" {
		t.Fatalf("raw date = %q", got.RawDate)
	}
}
