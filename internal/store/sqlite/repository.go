// Package sqlite persists the ledger in an embedded SQLite database with
// versioned migrations.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"caixa/internal/core"
)

type Repository struct {
	db      *sql.DB
	queries *Queries
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txs := make([]core.Transaction, len(rows))
	for i, row := range rows {
		txs[i] = rowToTransaction(row)
	}
	return txs, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return rowToTransaction(row), nil
}

func (r *Repository) Append(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	if err := r.queries.CreateTransaction(ctx, transactionToRow(t)); err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)

	return t.ID, nil
}

func (r *Repository) Update(ctx context.Context, id string, t core.Transaction) error {
	t.ID = id
	affected, err := r.queries.UpdateTransaction(ctx, transactionToRow(t))
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.queries.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func transactionToRow(t core.Transaction) transactionRow {
	row := transactionRow{
		ID:                 t.ID,
		RawDate:            t.RawDate,
		Description:        t.Description,
		TxType:             string(t.Type),
		Category:           t.Category,
		SourceAccount:      t.SourceAccount,
		DestinationAccount: t.DestinationAccount,
		AmountCents:        t.Amount.Cents,
	}
	if t.Date.IsKnown() {
		row.TxDate = t.Date.ISO()
	}
	return row
}

func rowToTransaction(row transactionRow) core.Transaction {
	t := core.Transaction{
		ID:                 row.ID,
		RawDate:            row.RawDate,
		Description:        row.Description,
		Type:               core.TransactionType(row.TxType),
		Category:           row.Category,
		SourceAccount:      row.SourceAccount,
		DestinationAccount: row.DestinationAccount,
		Amount:             core.Money{Cents: row.AmountCents},
	}
	if row.TxDate != "" {
		if d, err := core.ParseDate(row.TxDate); err == nil {
			t.Date = d
		} else {
			t.RawDate = row.TxDate
		}
	}
	return t
}
