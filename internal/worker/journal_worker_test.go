package worker

import (
	"context"
	"path/filepath"
	"testing"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/journal"
	"caixa/internal/store/memory"
)

type fakeMirror struct {
	synced  []string
	removed []string
}

func (m *fakeMirror) Sync(ctx context.Context, t core.Transaction) error {
	m.synced = append(m.synced, t.ID)
	return nil
}

func (m *fakeMirror) Remove(ctx context.Context, id string) error {
	m.removed = append(m.removed, id)
	return nil
}

func newWorker(t *testing.T, repo *memory.Repository, mirror Mirror) (*JournalWorker, *journal.Journal) {
	t.Helper()
	jnl, err := journal.Open(filepath.Join(t.TempDir(), "ledger.jsonl"))
	if err != nil {
		t.Fatalf("journal.Open() error = %v", err)
	}
	return NewJournalWorker(repo, jnl, mirror), jnl
}

func TestHandleEventFetchesFromStore(t *testing.T) {
	repo := memory.NewSeeded([]core.Transaction{
		{ID: "tx-1", Date: core.NewDate(2024, 8, 1), Description: "Rent", Type: core.Expense, Category: "Housing", SourceAccount: "Bank", Amount: core.Money{Cents: 120000}},
	})
	mirror := &fakeMirror{}
	w, jnl := newWorker(t, repo, mirror)
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewLedgerEventMessage("tx-1", amqp.OpCreated)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	records, err := jnl.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != "tx-1" || records[0].Description != "Rent" || records[0].AmountCents != 120000 {
		t.Fatalf("records[0] = %+v", records[0])
	}
	if len(mirror.synced) != 1 || mirror.synced[0] != "tx-1" {
		t.Fatalf("mirror.synced = %v", mirror.synced)
	}
}

func TestHandleEventDeleted(t *testing.T) {
	mirror := &fakeMirror{}
	w, jnl := newWorker(t, memory.NewRepository(), mirror)
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewLedgerEventMessage("gone", amqp.OpDeleted)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	records, err := jnl.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 || records[0].Op != "deleted" || records[0].ID != "gone" {
		t.Fatalf("records = %+v", records)
	}
	if len(mirror.removed) != 1 || mirror.removed[0] != "gone" {
		t.Fatalf("mirror.removed = %v", mirror.removed)
	}
}

func TestHandleEventMissingRecordBecomesTombstone(t *testing.T) {
	w, jnl := newWorker(t, memory.NewRepository(), nil)
	ctx := context.Background()

	// The record was deleted after the created event was published
	if err := w.HandleEvent(ctx, amqp.NewLedgerEventMessage("vanished", amqp.OpCreated)); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	records, err := jnl.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 || records[0].Op != "deleted" {
		t.Fatalf("records = %+v", records)
	}
}

func TestSnapshot(t *testing.T) {
	repo := memory.NewSeeded([]core.Transaction{
		{ID: "a", Type: core.Income, Category: "Salary", SourceAccount: "Bank", Amount: core.Money{Cents: 100000}},
		{ID: "b", Type: core.Expense, Category: "Food", SourceAccount: "Wallet", Amount: core.Money{Cents: 3000}},
	})
	w, jnl := newWorker(t, repo, nil)
	ctx := context.Background()

	// Stale entry from a previous run
	if err := jnl.Append(ctx, journal.Tombstone("stale")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := w.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	records, err := jnl.Records(ctx)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("records = %+v", records)
	}
}
