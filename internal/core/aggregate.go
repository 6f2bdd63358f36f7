package core

// TypeAmount is an unsigned total aggregated by transaction type.
type TypeAmount struct {
	Type   TransactionType
	Amount Money
}

// CategoryAmount is an unsigned total aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// AccountBalance is a signed running total for a single named account.
type AccountBalance struct {
	Account string
	Amount  Money
}

// TypeTotals sums unsigned amounts grouped by type, excluding transfers.
// First-seen order is preserved; empty input yields an empty slice.
func TypeTotals(txs []Transaction) []TypeAmount {
	sums := map[TransactionType]int64{}
	order := make([]TransactionType, 0, 2)
	for _, t := range txs {
		if t.Type == Transfer {
			continue
		}
		if _, seen := sums[t.Type]; !seen {
			order = append(order, t.Type)
		}
		sums[t.Type] += t.Amount.Cents
	}
	out := make([]TypeAmount, 0, len(order))
	for _, ty := range order {
		out = append(out, TypeAmount{Type: ty, Amount: Money{Cents: sums[ty]}})
	}
	return out
}

// ExpenseByCategory sums unsigned amounts of expense transactions grouped by
// category, preserving first-seen order.
func ExpenseByCategory(txs []Transaction) []CategoryAmount {
	sums := map[string]int64{}
	var order []string
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		if _, seen := sums[t.Category]; !seen {
			order = append(order, t.Category)
		}
		sums[t.Category] += t.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: sums[name]}})
	}
	return out
}

// AccountBalances computes signed per-account totals across all accounts:
// income credits the source account, expense debits it, and a transfer
// debits the source while crediting the destination. This is derived data
// on top of the pool-wide balance, which stays transfer-neutral.
func AccountBalances(txs []Transaction) []AccountBalance {
	sums := map[string]int64{}
	var order []string
	add := func(account string, cents int64) {
		if account == "" {
			return
		}
		if _, seen := sums[account]; !seen {
			order = append(order, account)
		}
		sums[account] += cents
	}
	for _, t := range txs {
		if t.IsTransfer() {
			add(t.SourceAccount, -t.Amount.Cents)
			add(t.DestinationAccount, t.Amount.Cents)
			continue
		}
		switch t.Type {
		case Income:
			add(t.SourceAccount, t.Amount.Cents)
		case Expense:
			add(t.SourceAccount, -t.Amount.Cents)
		}
	}
	out := make([]AccountBalance, 0, len(order))
	for _, name := range order {
		out = append(out, AccountBalance{Account: name, Amount: Money{Cents: sums[name]}})
	}
	return out
}

// LedgerView is the derived state for one (year, month, category) query:
// the matching transactions plus the balances and aggregates a presentation
// layer needs to render the period.
type LedgerView struct {
	Year              int
	Month             int // 1-12
	Category          string
	Transactions      []Transaction
	Balance           Money // carried-in balance plus the filtered period movement
	TypeTotals        []TypeAmount
	ExpenseByCategory []CategoryAmount
	AccountBalances   []AccountBalance
}

// BuildLedgerView filters the snapshot by period then category and derives
// the aggregate views. The carried-in balance is computed over the whole
// snapshot; only the period movement honors the category filter.
func BuildLedgerView(txs []Transaction, year, month int, category string) LedgerView {
	filtered := ByCategory(ByPeriod(txs, year, month), category)

	var periodCents int64
	for _, t := range filtered {
		periodCents += t.SignedCents()
	}

	return LedgerView{
		Year:              year,
		Month:             month,
		Category:          category,
		Transactions:      filtered,
		Balance:           Money{Cents: BalanceAsOf(txs, year, month).Cents + periodCents},
		TypeTotals:        TypeTotals(filtered),
		ExpenseByCategory: ExpenseByCategory(filtered),
		AccountBalances:   AccountBalances(txs),
	}
}
