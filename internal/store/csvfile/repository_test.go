package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"caixa/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "ledger.csv"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	return repo
}

func sampleTx() core.Transaction {
	return core.Transaction{
		Date:          core.NewDate(2024, 3, 15),
		Description:   "Groceries",
		Type:          core.Expense,
		Category:      "Food",
		SourceAccount: "Wallet",
		Amount:        core.Money{Cents: 4550},
	}
}

func TestNewRepositoryCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.csv")
	if _, err := NewRepository(path); err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read created file: %v", err)
	}
	if !strings.HasPrefix(string(data), "id,date,description,type,category,source_account,destination_account,amount") {
		t.Fatalf("unexpected header: %q", string(data))
	}
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, sampleTx())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id == "" {
		t.Fatal("Append() returned empty id")
	}

	txs, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	got := txs[0]
	if got.ID != id {
		t.Errorf("id = %q, want %q", got.ID, id)
	}
	if got.Date.ISO() != "2024-03-15" {
		t.Errorf("date = %q", got.Date.ISO())
	}
	if got.Amount.Cents != 4550 {
		t.Errorf("amount = %d, want 4550", got.Amount.Cents)
	}
	if got.Description != "Groceries" || got.Category != "Food" || got.SourceAccount != "Wallet" {
		t.Errorf("fields lost in round trip: %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, sampleTx())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	updated := sampleTx()
	updated.Description = "Supermarket"
	updated.Amount = core.Money{Cents: 9900}
	if err := repo.Update(ctx, id, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Description != "Supermarket" || got.Amount.Cents != 9900 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.ID != id {
		t.Fatalf("update changed id to %q", got.ID)
	}
}

func TestUpdateMissingID(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Update(context.Background(), "no-such-id", sampleTx())
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, sampleTx())
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("Delete() of unknown id error = %v", err)
	}

	txs, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(txs))
	}
}

func TestMalformedDateRetained(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	content := "id,date,description,type,category,source_account,destination_account,amount\n" +
		"abc,not-a-date,Mystery,Expense,Other,Wallet,,10.00\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	repo, err := NewRepository(path)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	txs, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].Date.IsKnown() {
		t.Fatal("malformed date should not parse")
	}
	if txs[0].RawDate != "not-a-date" {
		t.Fatalf("raw date = %q", txs[0].RawDate)
	}

	// the verbatim text survives a rewrite
	if _, err := repo.Append(context.Background(), sampleTx()); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(data), "not-a-date") {
		t.Fatal("raw date lost on rewrite")
	}
}

func TestCorruptStoreFailsLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing column",
			content: "id,date,description,type,category,source_account,destination_account,amount\nabc,2024-01-01,Short row,Expense,Food,Wallet,10.00\n",
		},
		{
			name:    "bad amount",
			content: "id,date,description,type,category,source_account,destination_account,amount\nabc,2024-01-01,Bad amount,Expense,Food,Wallet,,ten\n",
		},
		{
			name:    "empty file",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("seed file: %v", err)
			}

			repo, err := NewRepository(path)
			if err != nil {
				t.Fatalf("NewRepository() error = %v", err)
			}
			if _, err := repo.Load(context.Background()); err == nil {
				t.Fatal("expected load error for corrupt store")
			}
		})
	}
}
