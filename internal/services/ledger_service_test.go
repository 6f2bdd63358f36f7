package services

import (
	"context"
	"errors"
	"testing"

	"caixa/internal/core"
	"caixa/internal/store/memory"
)

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(ctx context.Context, id, op string) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, op+":"+id)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func validTx() core.Transaction {
	return core.Transaction{
		Date:          core.NewDate(2024, 4, 10),
		Description:   "Groceries",
		Type:          core.Expense,
		Category:      "Food",
		SourceAccount: "Wallet",
		Amount:        core.Money{Cents: 4200},
	}
}

func TestSubmit(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.NewRepository(), pub, nil)
	ctx := context.Background()

	id, err := svc.Submit(ctx, validTx())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if id == "" {
		t.Fatal("Submit() returned empty id")
	}
	if len(pub.events) != 1 || pub.events[0] != "created:"+id {
		t.Fatalf("events = %v", pub.events)
	}
}

func TestSubmitRejectsInvalid(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.NewRepository(), pub, nil)

	bad := validTx()
	bad.Amount = core.Money{Cents: 0}

	if _, err := svc.Submit(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("invalid submit should not publish, got %v", pub.events)
	}
}

func TestSubmitSurvivesBrokerOutage(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection refused")}
	repo := memory.NewRepository()
	svc := NewLedgerService(repo, pub, nil)

	id, err := svc.Submit(context.Background(), validTx())
	if err != nil {
		t.Fatalf("Submit() should succeed when the broker is down, got %v", err)
	}
	if _, err := repo.Get(context.Background(), id); err != nil {
		t.Fatalf("transaction not stored: %v", err)
	}
}

func TestEditAndRemove(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.NewRepository(), pub, nil)
	ctx := context.Background()

	id, err := svc.Submit(ctx, validTx())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	edited := validTx()
	edited.Description = "Farmers market"
	if err := svc.Edit(ctx, id, edited); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	if err := svc.Edit(ctx, "missing", edited); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := svc.Remove(ctx, id); err != nil {
		t.Fatalf("repeated Remove() error = %v", err)
	}

	want := []string{"created:" + id, "updated:" + id, "deleted:" + id, "deleted:" + id}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %v, want %v", pub.events, want)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Fatalf("events[%d] = %q, want %q", i, pub.events[i], want[i])
		}
	}
}

func TestQuery(t *testing.T) {
	svc := NewLedgerService(memory.NewRepository(), nil, nil)
	ctx := context.Background()

	income := validTx()
	income.Type = core.Income
	income.Category = "Salary"
	income.Date = core.NewDate(2024, 3, 1)
	income.Amount = core.Money{Cents: 100000}
	if _, err := svc.Submit(ctx, income); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := svc.Submit(ctx, validTx()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	view, err := svc.Query(ctx, 2024, 4, core.CategoryAll)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(view.Transactions) != 1 {
		t.Fatalf("expected 1 transaction in April, got %d", len(view.Transactions))
	}
	if view.Balance.Cents != 100000-4200 {
		t.Fatalf("balance = %d", view.Balance.Cents)
	}
}

func TestAccounts(t *testing.T) {
	svc := NewLedgerService(memory.NewRepository(), nil, []string{"Wallet", "Bank"})
	ctx := context.Background()

	tx := validTx()
	tx.SourceAccount = "Crypto"
	if _, err := svc.Submit(ctx, tx); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	accounts, err := svc.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts() error = %v", err)
	}
	want := []string{"Wallet", "Bank", "Crypto"}
	if len(accounts) != len(want) {
		t.Fatalf("accounts = %v, want %v", accounts, want)
	}
	for i := range want {
		if accounts[i] != want[i] {
			t.Fatalf("accounts[%d] = %q, want %q", i, accounts[i], want[i])
		}
	}
}
