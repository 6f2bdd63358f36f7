package core

import "strings"

// Accounts returns the configured defaults followed by every account name
// observed in the transactions that is not already present, preserving
// first-seen order with duplicates removed. Pure function of its inputs;
// the account list is never stored.
func Accounts(defaults []string, txs []Transaction) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(defaults))
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, name := range defaults {
		add(name)
	}
	for _, t := range txs {
		add(t.SourceAccount)
		add(t.DestinationAccount)
	}
	return out
}
