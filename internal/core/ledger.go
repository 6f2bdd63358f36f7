package core

// SignedCents returns the transaction's contribution to the pool-wide
// balance: positive for income, negative for expense, zero for a transfer.
// A transfer moves money between accounts without changing the total held
// across all accounts taken as a single pool.
func (t Transaction) SignedCents() int64 {
	switch t.Type {
	case Income:
		return t.Amount.Cents
	case Expense:
		return -t.Amount.Cents
	}
	return 0
}

// BalanceAsOf sums signed amounts over every transaction dated strictly
// before the first day of (year, month): the running balance carried into
// the period. Undated transactions never contribute.
func BalanceAsOf(txs []Transaction, year, month int) Money {
	var cents int64
	for _, t := range txs {
		if t.Date.BeforePeriod(year, month) {
			cents += t.SignedCents()
		}
	}
	return Money{Cents: cents}
}

// PeriodBalance sums signed amounts over transactions dated within
// (year, month).
func PeriodBalance(txs []Transaction, year, month int) Money {
	var cents int64
	for _, t := range txs {
		if t.Date.InPeriod(year, month) {
			cents += t.SignedCents()
		}
	}
	return Money{Cents: cents}
}

// TotalBalance is the displayed balance: the carried-in balance plus the
// period's own movement.
func TotalBalance(txs []Transaction, year, month int) Money {
	return Money{Cents: BalanceAsOf(txs, year, month).Cents + PeriodBalance(txs, year, month).Cents}
}
