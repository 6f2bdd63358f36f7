// Package csvfile stores the ledger in a single CSV file, the canonical
// at-rest format. Every write rewrites the whole file under a lock, which
// is fine at personal-ledger scale and keeps the file trivially portable.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"caixa/internal/core"
)

var header = []string{"id", "date", "description", "type", "category", "source_account", "destination_account", "amount"}

type Repository struct {
	path string
	mu   sync.Mutex
}

// NewRepository opens the CSV store at path, creating an empty file with
// the header row when none exists.
func NewRepository(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	r := &Repository{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := r.writeAll(nil); err != nil {
			return nil, fmt.Errorf("initialize csv store: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat csv store: %w", err)
	}

	return r, nil
}

func (r *Repository) Close() error { return nil }

func (r *Repository) Load(ctx context.Context) ([]core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll()
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txs, err := r.readAll()
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range txs {
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

	txs, err := r.readAll()
	if err != nil {
		return "", err
	}
	txs = append(txs, t)
	if err := r.writeAll(txs); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Transaction saved to CSV",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents)

	return t.ID, nil
}

func (r *Repository) Update(ctx context.Context, id string, t core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txs, err := r.readAll()
	if err != nil {
		return err
	}

	found := false
	for i := range txs {
		if txs[i].ID == id {
			t.ID = id
			txs[i] = t
			found = true
			break
		}
	}
	if !found {
		return core.ErrNotFound
	}

	return r.writeAll(txs)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txs, err := r.readAll()
	if err != nil {
		return err
	}

	kept := txs[:0]
	removed := false
	for _, t := range txs {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return nil
	}

	return r.writeAll(kept)
}

func (r *Repository) readAll() ([]core.Transaction, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open csv store: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv store: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv store %s: missing header row", r.path)
	}

	txs := make([]core.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		t, err := rowToTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("csv store %s: row %d: %w", r.path, i+2, err)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (r *Repository) writeAll(txs []core.Transaction) error {
	tmp := r.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create csv store: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txs {
		if err := w.Write(transactionToRow(t)); err != nil {
			f.Close()
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv store: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv store: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace csv store: %w", err)
	}
	return nil
}

func transactionToRow(t core.Transaction) []string {
	return []string{
		t.ID,
		t.DateText(),
		t.Description,
		string(t.Type),
		t.Category,
		t.SourceAccount,
		t.DestinationAccount,
		t.Amount.Decimal(),
	}
}

func rowToTransaction(rec []string) (core.Transaction, error) {
	if len(rec) != len(header) {
		return core.Transaction{}, fmt.Errorf("expected %d columns, got %d", len(header), len(rec))
	}

	t := core.Transaction{
		ID:                 rec[0],
		Description:        rec[2],
		Type:               core.TransactionType(rec[3]),
		Category:           rec[4],
		SourceAccount:      rec[5],
		DestinationAccount: rec[6],
	}

	// Dates that never parsed are carried verbatim so the record is not
	// lost, it just stays outside every period view.
	if d, err := core.ParseDate(rec[1]); err == nil {
		t.Date = d
	} else {
		t.RawDate = rec[1]
	}

	cents, err := core.ParseDecimalToCents(rec[7])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", rec[7], err)
	}
	t.Amount = core.Money{Cents: cents}

	return t, nil
}
