package sqlite

import (
	"context"
	"database/sql"
)

type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type transactionRow struct {
	ID                 string
	TxDate             string
	RawDate            string
	Description        string
	TxType             string
	Category           string
	SourceAccount      string
	DestinationAccount string
	AmountCents        int64
}

const listTransactions = `
SELECT id, tx_date, raw_date, description, tx_type, category, source_account, destination_account, amount_cents
FROM transactions
ORDER BY rowid
`

func (q *Queries) ListTransactions(ctx context.Context) ([]transactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []transactionRow
	for rows.Next() {
		var r transactionRow
		if err := rows.Scan(&r.ID, &r.TxDate, &r.RawDate, &r.Description, &r.TxType, &r.Category, &r.SourceAccount, &r.DestinationAccount, &r.AmountCents); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getTransaction = `
SELECT id, tx_date, raw_date, description, tx_type, category, source_account, destination_account, amount_cents
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (transactionRow, error) {
	var r transactionRow
	err := q.db.QueryRowContext(ctx, getTransaction, id).
		Scan(&r.ID, &r.TxDate, &r.RawDate, &r.Description, &r.TxType, &r.Category, &r.SourceAccount, &r.DestinationAccount, &r.AmountCents)
	return r, err
}

const createTransaction = `
INSERT INTO transactions (id, tx_date, raw_date, description, tx_type, category, source_account, destination_account, amount_cents)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, r transactionRow) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		r.ID, r.TxDate, r.RawDate, r.Description, r.TxType, r.Category, r.SourceAccount, r.DestinationAccount, r.AmountCents)
	return err
}

const updateTransaction = `
UPDATE transactions
SET tx_date = ?, raw_date = ?, description = ?, tx_type = ?, category = ?, source_account = ?, destination_account = ?, amount_cents = ?
WHERE id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, r transactionRow) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		r.TxDate, r.RawDate, r.Description, r.TxType, r.Category, r.SourceAccount, r.DestinationAccount, r.AmountCents, r.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions
WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, id)
	return err
}
