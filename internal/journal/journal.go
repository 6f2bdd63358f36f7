// Package journal keeps an append-only JSONL change log of the ledger.
// The worker writes one record per change event and periodically compacts
// the file down to the latest record per transaction.
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"caixa/internal/core"
)

// Record is one journal line. Deleted transactions keep their id and op
// so replaying the journal converges on the store.
type Record struct {
	ID                 string    `json:"id"`
	Op                 string    `json:"op"`
	Date               string    `json:"date,omitempty"`
	Description        string    `json:"description,omitempty"`
	Type               string    `json:"type,omitempty"`
	Category           string    `json:"category,omitempty"`
	SourceAccount      string    `json:"source_account,omitempty"`
	DestinationAccount string    `json:"destination_account,omitempty"`
	AmountCents        int64     `json:"amount_cents,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// FromTransaction builds a journal record for a change to t.
func FromTransaction(op string, t core.Transaction) Record {
	return Record{
		ID:                 t.ID,
		Op:                 op,
		Date:               t.DateText(),
		Description:        t.Description,
		Type:               string(t.Type),
		Category:           t.Category,
		SourceAccount:      t.SourceAccount,
		DestinationAccount: t.DestinationAccount,
		AmountCents:        t.Amount.Cents,
		Timestamp:          time.Now(),
	}
}

// Tombstone builds a deletion record for an id.
func Tombstone(id string) Record {
	return Record{ID: id, Op: "deleted", Timestamp: time.Now()}
}

type Journal struct {
	path string
	mu   sync.Mutex
}

func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	return &Journal{path: path}, nil
}

// Append writes one record to the end of the journal.
func (j *Journal) Append(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("journal record has empty id")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal journal record: %w", err)
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append journal record: %w", err)
	}
	return nil
}

// Records returns every journal line in order. A missing file is an
// empty journal.
func (j *Journal) Records(ctx context.Context) ([]Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readLocked()
}

func (j *Journal) readLocked() ([]Record, error) {
	f, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var out []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("journal %s: line %d: %w", j.path, line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// Compact rewrites the journal keeping only the latest record per id
// and dropping tombstoned transactions.
func (j *Journal) Compact(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	records, err := j.readLocked()
	if err != nil {
		return err
	}

	latest := make(map[string]Record, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		if _, seen := latest[rec.ID]; !seen {
			order = append(order, rec.ID)
		}
		latest[rec.ID] = rec
	}

	compacted := make([]Record, 0, len(order))
	for _, id := range order {
		rec := latest[id]
		if rec.Op == "deleted" {
			continue
		}
		compacted = append(compacted, rec)
	}

	return j.writeLocked(compacted)
}

// Rewrite replaces the journal with one record per stored transaction.
func (j *Journal) Rewrite(ctx context.Context, txs []core.Transaction) error {
	records := make([]Record, len(txs))
	for i, t := range txs {
		records[i] = FromTransaction("created", t)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.writeLocked(records)
}

func (j *Journal) writeLocked(records []Record) error {
	tmp := j.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			f.Close()
			return fmt.Errorf("marshal journal record: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			f.Close()
			return fmt.Errorf("write journal record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}
