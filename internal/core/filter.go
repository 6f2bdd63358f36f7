package core

// CategoryAll is the sentinel that disables category filtering.
const CategoryAll = "All"

// ByPeriod returns the transactions dated within (year, month), preserving
// order. Undated transactions are excluded; they remain visible only in
// unfiltered listings.
func ByPeriod(txs []Transaction, year, month int) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Date.InPeriod(year, month) {
			out = append(out, t)
		}
	}
	return out
}

// ByCategory returns the transactions whose category exactly matches, or the
// input unchanged for the CategoryAll sentinel. Pure and order-preserving;
// composes with ByPeriod in either order.
func ByCategory(txs []Transaction, category string) []Transaction {
	if category == CategoryAll || category == "" {
		return txs
	}
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
