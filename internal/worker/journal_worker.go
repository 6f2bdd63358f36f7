// Package worker consumes ledger change events and maintains the
// journal and the optional spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/journal"
	"caixa/internal/store"
)

// Mirror receives a copy of every change. *mirror.Client satisfies it.
type Mirror interface {
	Sync(ctx context.Context, t core.Transaction) error
	Remove(ctx context.Context, id string) error
}

// JournalWorker applies change events to the journal. Events carry only
// the id, the current record is fetched from the store so the journal
// never trails a stale payload.
type JournalWorker struct {
	storage store.Repository
	journal *journal.Journal
	mirror  Mirror
}

func NewJournalWorker(storage store.Repository, jnl *journal.Journal, mirror Mirror) *JournalWorker {
	return &JournalWorker{
		storage: storage,
		journal: jnl,
		mirror:  mirror,
	}
}

// HandleEvent processes a single change event. Returning an error
// requeues the message.
func (w *JournalWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"id", msg.ID,
		"op", msg.Op)

	if msg.Op == amqp.OpDeleted {
		return w.handleDeleted(ctx, msg.ID)
	}

	t, err := w.storage.Get(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and consume, converge on the store
		return w.handleDeleted(ctx, msg.ID)
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.journal.Append(ctx, journal.FromTransaction(msg.Op, t)); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}

	if w.mirror != nil {
		if err := w.mirror.Sync(ctx, t); err != nil {
			return fmt.Errorf("mirror transaction: %w", err)
		}
	}

	return nil
}

func (w *JournalWorker) handleDeleted(ctx context.Context, id string) error {
	if err := w.journal.Append(ctx, journal.Tombstone(id)); err != nil {
		return fmt.Errorf("append journal tombstone: %w", err)
	}

	if w.mirror != nil {
		if err := w.mirror.Remove(ctx, id); err != nil {
			return fmt.Errorf("remove mirrored transaction: %w", err)
		}
	}

	return nil
}

// Snapshot rewrites the journal from a full store snapshot, picking up
// anything that was changed while the worker was down.
func (w *JournalWorker) Snapshot(ctx context.Context) error {
	txs, err := w.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	if err := w.journal.Rewrite(ctx, txs); err != nil {
		return fmt.Errorf("rewrite journal: %w", err)
	}

	slog.InfoContext(ctx, "Journal snapshot completed", "transactions", len(txs))
	return nil
}

// Run compacts and snapshots the journal on the given intervals until
// ctx is done. A zero interval disables that task.
func (w *JournalWorker) Run(ctx context.Context, compactInterval, snapshotInterval time.Duration) error {
	var compactC, snapshotC <-chan time.Time

	if compactInterval > 0 {
		t := time.NewTicker(compactInterval)
		defer t.Stop()
		compactC = t.C
	}
	if snapshotInterval > 0 {
		t := time.NewTicker(snapshotInterval)
		defer t.Stop()
		snapshotC = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-compactC:
			if err := w.journal.Compact(ctx); err != nil {
				slog.ErrorContext(ctx, "Journal compaction failed", "error", err)
			} else {
				slog.InfoContext(ctx, "Journal compacted")
			}
		case <-snapshotC:
			if err := w.Snapshot(ctx); err != nil {
				slog.ErrorContext(ctx, "Journal snapshot failed", "error", err)
			}
		}
	}
}
