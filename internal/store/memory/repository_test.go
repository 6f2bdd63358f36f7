package memory

import (
	"context"
	"errors"
	"testing"

	"caixa/internal/core"
)

func TestRepositoryLifecycle(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	id, err := repo.Append(ctx, core.Transaction{
		Date:          core.NewDate(2024, 5, 1),
		Description:   "Paycheck",
		Type:          core.Income,
		Category:      "Salary",
		SourceAccount: "Bank",
		Amount:        core.Money{Cents: 250000},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != "Paycheck" {
		t.Fatalf("Get() = %+v", got)
	}

	got.Description = "May paycheck"
	if err := repo.Update(ctx, id, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	txs, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(txs) != 1 || txs[0].Description != "May paycheck" {
		t.Fatalf("Load() = %+v", txs)
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

func TestLoadReturnsCopy(t *testing.T) {
	repo := NewSeeded([]core.Transaction{
		{ID: "a", Type: core.Expense, Category: "Food", SourceAccount: "Wallet", Amount: core.Money{Cents: 100}},
	})

	txs, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	txs[0].Category = "changed"

	again, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again[0].Category != "Food" {
		t.Fatal("Load() exposed internal slice")
	}
}

func TestUpdateMissing(t *testing.T) {
	repo := NewRepository()
	err := repo.Update(context.Background(), "missing", core.Transaction{})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
