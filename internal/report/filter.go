// Package report filters, aggregates and summarizes reconciled transactions.
package report

import (
	"cmp"
	"slices"
	"strings"

	"jeongsim_ledger/internal/model"
)

// Filter selects transactions. Zero-valued fields match everything. Dates
// are compared as YYYY-MM-DD strings and both bounds are inclusive.
type Filter struct {
	Type      model.TransactionType
	StartDate string
	EndDate   string
	Floor     string
	Client    string
	Product   string
}

func (f Filter) Match(tx model.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.StartDate != "" && tx.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && tx.Date > f.EndDate {
		return false
	}
	if f.Floor != "" && tx.Floor != f.Floor {
		return false
	}
	if f.Client != "" && !containsFold(tx.ClientName, f.Client) {
		return false
	}
	if f.Product != "" {
		found := slices.ContainsFunc(tx.Items, func(item model.TransactionItem) bool {
			return containsFold(item.Name, f.Product)
		})
		if !found {
			return false
		}
	}
	return true
}

// Apply returns the matching transactions, newest first. Transactions on the
// same date are ordered by descending id.
func (f Filter) Apply(txs []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
