package report

import (
	"cmp"
	"slices"

	"jeongsim_ledger/internal/model"

	"github.com/shopspring/decimal"
)

const topClientLimit = 5

type NamedValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// DashboardStats summarizes sales statements. Quotations are ignored.
type DashboardStats struct {
	TotalSales   decimal.Decimal `json:"totalSales"`
	MonthlySales []NamedValue    `json:"monthlySales"`
	TopClients   []NamedValue    `json:"topClients"`
	ClientCount  int             `json:"clientCount"`
}

// ComputeStats builds the dashboard figures. Monthly sales are keyed by
// YYYY-MM in ascending order; when monthLimit is positive only the most
// recent monthLimit months are kept.
func ComputeStats(txs []model.Transaction, monthLimit int) DashboardStats {
	stats := DashboardStats{
		TotalSales:   decimal.Zero,
		MonthlySales: []NamedValue{},
		TopClients:   []NamedValue{},
	}

	monthly := newOrderedSum()
	clients := newOrderedSum()
	for _, tx := range txs {
		if tx.Type != model.TransactionTypeStatement {
			continue
		}
		stats.TotalSales = stats.TotalSales.Add(tx.TotalAmount)
		monthly.add(month(tx.Date), tx.TotalAmount)
		clients.add(tx.ClientName, tx.TotalAmount)
	}

	stats.MonthlySales = monthly.values()
	slices.SortStableFunc(stats.MonthlySales, func(a, b NamedValue) int {
		return cmp.Compare(a.Name, b.Name)
	})
	if monthLimit > 0 && len(stats.MonthlySales) > monthLimit {
		stats.MonthlySales = stats.MonthlySales[len(stats.MonthlySales)-monthLimit:]
	}

	stats.TopClients = clients.values()
	slices.SortStableFunc(stats.TopClients, func(a, b NamedValue) int {
		return b.Value.Cmp(a.Value)
	})
	if len(stats.TopClients) > topClientLimit {
		stats.TopClients = stats.TopClients[:topClientLimit]
	}
	stats.ClientCount = clients.len()

	return stats
}

func month(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// orderedSum accumulates values per key, remembering first-seen order.
type orderedSum struct {
	index map[string]int
	items []NamedValue
}

func newOrderedSum() *orderedSum {
	return &orderedSum{index: make(map[string]int)}
}

func (o *orderedSum) add(key string, v decimal.Decimal) {
	if pos, ok := o.index[key]; ok {
		o.items[pos].Value = o.items[pos].Value.Add(v)
		return
	}
	o.index[key] = len(o.items)
	o.items = append(o.items, NamedValue{Name: key, Value: v})
}

func (o *orderedSum) values() []NamedValue {
	return append([]NamedValue{}, o.items...)
}

func (o *orderedSum) len() int {
	return len(o.items)
}
