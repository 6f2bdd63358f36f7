// Package postgres persists the ledger in PostgreSQL for multi-process
// deployments, sharing its schema shape with the sqlite backend.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"caixa/internal/core"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

const selectColumns = "id, tx_date, raw_date, description, tx_type, category, source_account, destination_account, amount_cents"

func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+selectColumns+" FROM transactions ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+selectColumns+" FROM transactions WHERE id = $1", id)

	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) Append(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	txDate := ""
	if t.Date.IsKnown() {
		txDate = t.Date.ISO()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, tx_date, raw_date, description, tx_type, category, source_account, destination_account, amount_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, txDate, t.RawDate, t.Description, string(t.Type), t.Category, t.SourceAccount, t.DestinationAccount, t.Amount.Cents)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to PostgreSQL",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)

	return t.ID, nil
}

func (r *Repository) Update(ctx context.Context, id string, t core.Transaction) error {
	txDate := ""
	if t.Date.IsKnown() {
		txDate = t.Date.ISO()
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		 SET tx_date = $1, raw_date = $2, description = $3, tx_type = $4, category = $5, source_account = $6, destination_account = $7, amount_cents = $8
		 WHERE id = $9`,
		txDate, t.RawDate, t.Description, string(t.Type), t.Category, t.SourceAccount, t.DestinationAccount, t.Amount.Cents, id)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t      core.Transaction
		txDate string
		txType string
		cents  int64
	)
	if err := row.Scan(&t.ID, &txDate, &t.RawDate, &t.Description, &txType, &t.Category, &t.SourceAccount, &t.DestinationAccount, &cents); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(txType)
	t.Amount = core.Money{Cents: cents}
	if txDate != "" {
		if d, err := core.ParseDate(txDate); err == nil {
			t.Date = d
		} else {
			t.RawDate = txDate
		}
	}
	return t, nil
}
