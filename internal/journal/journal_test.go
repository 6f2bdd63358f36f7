package journal

import (
	"context"
	"path/filepath"
	"testing"

	"caixa/internal/core"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "ledger.jsonl"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return j
}

func TestAppendAndRead(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	tx := core.Transaction{
		ID:            "a",
		Date:          core.NewDate(2024, 7, 1),
		Description:   "Coffee",
		Type:          core.Expense,
		Category:      "Food",
		SourceAccount: "Wallet",
		Amount:        core.Money{Cents: 350},
	}

	if err := j.Append(ctx, FromTransaction("created", tx)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := j.Append(ctx, Tombstone("b")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	records, err := j.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a" || records[0].Op != "created" || records[0].AmountCents != 350 {
		t.Fatalf("records[0] = %+v", records[0])
	}
	if records[0].Date != "2024-07-01" {
		t.Fatalf("date = %q", records[0].Date)
	}
	if records[1].Op != "deleted" {
		t.Fatalf("records[1] = %+v", records[1])
	}
}

func TestAppendRejectsEmptyID(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Append(context.Background(), Record{Op: "created"}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestMissingFileIsEmptyJournal(t *testing.T) {
	j := openTestJournal(t)
	records, err := j.Records(context.Background())
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty journal, got %d records", len(records))
	}
}

func TestCompact(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	tx := core.Transaction{ID: "a", Type: core.Expense, Category: "Food", SourceAccount: "Wallet", Amount: core.Money{Cents: 100}}
	if err := j.Append(ctx, FromTransaction("created", tx)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	tx.Description = "second revision"
	if err := j.Append(ctx, FromTransaction("updated", tx)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	other := tx
	other.ID = "b"
	if err := j.Append(ctx, FromTransaction("created", other)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := j.Append(ctx, Tombstone("b")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := j.Compact(ctx); err != nil {
		t.Fatalf("Compact() error = %v", err)
	}

	records, err := j.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after compaction, got %d", len(records))
	}
	if records[0].ID != "a" || records[0].Description != "second revision" {
		t.Fatalf("records[0] = %+v", records[0])
	}
}

func TestRewrite(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	if err := j.Append(ctx, Tombstone("stale")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	txs := []core.Transaction{
		{ID: "x", Type: core.Income, Category: "Salary", SourceAccount: "Bank", Amount: core.Money{Cents: 100000}},
		{ID: "y", RawDate: "unknown", Type: core.Expense, Category: "Other", SourceAccount: "Wallet", Amount: core.Money{Cents: 500}},
	}
	if err := j.Rewrite(ctx, txs); err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}

	records, err := j.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "x" || records[1].ID != "y" {
		t.Fatalf("records = %+v", records)
	}
	if records[1].Date != "unknown" {
		t.Fatalf("raw date lost: %+v", records[1])
	}
}
