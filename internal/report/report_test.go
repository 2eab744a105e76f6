package report

import (
	"testing"

	"jeongsim_ledger/internal/model"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func tx(id, date string, typ model.TransactionType, client, floor string, amount int64, items ...string) model.Transaction {
	t := model.Transaction{ID: id, Date: date, Type: typ, ClientName: client, Floor: floor}
	for _, name := range items {
		t.Items = append(t.Items, model.TransactionItem{
			Name:        name,
			Quantity:    d(1),
			UnitPrice:   d(amount),
			SupplyPrice: d(amount),
			Tax:         d(amount / 10),
		})
	}
	t.RecomputeTotals()
	if len(items) == 0 {
		t.TotalAmount = d(amount)
	}
	return t
}

func sample() []model.Transaction {
	return []model.Transaction{
		tx("A", "2024-01-10", model.TransactionTypeStatement, "Acme Corp", "1층", 1000, "Widget"),
		tx("B", "2024-02-03", model.TransactionTypeQuotation, "Beta", "", 5000, "Bolt"),
		tx("C", "2024-02-03", model.TransactionTypeStatement, "acme corp", "2층", 2000, "widget mini", "Nut"),
		tx("D", "2024-03-15", model.TransactionTypeStatement, "Gamma", "1층", 3000, "Nut"),
	}
}

func ids(txs []model.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{"all newest first", Filter{}, []string{"D", "C", "B", "A"}},
		{"statements", Filter{Type: model.TransactionTypeStatement}, []string{"D", "C", "A"}},
		{"date range inclusive", Filter{StartDate: "2024-02-03", EndDate: "2024-02-03"}, []string{"C", "B"}},
		{"floor exact", Filter{Floor: "1층"}, []string{"D", "A"}},
		{"client case-insensitive", Filter{Client: "ACME"}, []string{"C", "A"}},
		{"product substring", Filter{Product: "WIDGET"}, []string{"C", "A"}},
		{"no match", Filter{Client: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(sample()))
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
					break
				}
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	txs := append(sample(),
		tx("E", "2024-03-20", model.TransactionTypeStatement, "Gamma", "", 500),
	)
	stats := ComputeStats(txs, 6)

	expectedTotal := d(1100).Add(d(4400)).Add(d(3300)).Add(d(500))
	if !stats.TotalSales.Equal(expectedTotal) {
		t.Errorf("Expected total %s, got %s", expectedTotal, stats.TotalSales)
	}
	if len(stats.MonthlySales) != 3 || stats.MonthlySales[0].Name != "2024-01" || stats.MonthlySales[2].Name != "2024-03" {
		t.Errorf("Unexpected monthly sales: %+v", stats.MonthlySales)
	}
	if !stats.MonthlySales[2].Value.Equal(d(3800)) {
		t.Errorf("Expected March 3800, got %s", stats.MonthlySales[2].Value)
	}
	if stats.TopClients[0].Name != "acme corp" || stats.TopClients[1].Name != "Gamma" {
		t.Errorf("Unexpected top clients: %+v", stats.TopClients)
	}
	if stats.ClientCount != 3 {
		t.Errorf("Expected 3 clients, got %d", stats.ClientCount)
	}
}

func TestComputeStatsMonthLimitAndTopFive(t *testing.T) {
	var txs []model.Transaction
	months := []string{"2023-08", "2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02", "2024-03"}
	for i, m := range months {
		txs = append(txs, tx(m, m+"-01", model.TransactionTypeStatement, m, "", int64(100*(i+1))))
	}

	stats := ComputeStats(txs, 6)
	if len(stats.MonthlySales) != 6 || stats.MonthlySales[0].Name != "2023-10" {
		t.Errorf("Expected last 6 months from 2023-10, got %+v", stats.MonthlySales)
	}
	if len(stats.TopClients) != 5 || stats.TopClients[0].Name != "2024-03" {
		t.Errorf("Expected top 5 led by 2024-03, got %+v", stats.TopClients)
	}
	if stats.ClientCount != 8 {
		t.Errorf("Expected 8 clients, got %d", stats.ClientCount)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil, 6)
	if !stats.TotalSales.IsZero() || stats.MonthlySales == nil || stats.TopClients == nil {
		t.Errorf("Expected zeroed stats with empty slices, got %+v", stats)
	}
}

func TestAggregateItems(t *testing.T) {
	items := AggregateItems(sample())
	if len(items) != 4 {
		t.Fatalf("Expected 4 distinct items, got %d", len(items))
	}

	var nut model.TransactionItem
	for _, item := range items {
		if item.Name == "Nut" {
			nut = item
		}
	}
	if !nut.Quantity.Equal(d(2)) || !nut.SupplyPrice.Equal(d(5000)) || !nut.Tax.Equal(d(500)) {
		t.Errorf("Unexpected Nut aggregate: %+v", nut)
	}
	for i := 1; i < len(items); i++ {
		if newCollator().CompareString(items[i-1].Name, items[i].Name) > 0 {
			t.Errorf("Items not sorted by name: %s before %s", items[i-1].Name, items[i].Name)
		}
	}
}

func TestFlattenReport(t *testing.T) {
	report := FlattenReport(sample())
	if len(report) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(report))
	}
	if report[0].Date != "2024-01-10" || report[0].Type != "매출" {
		t.Errorf("Unexpected first row: %+v", report[0])
	}
	if report[1].Type != "견적" || report[1].Name != "Bolt" {
		t.Errorf("Expected quotation row second, got %+v", report[1])
	}
	if report[4].Date != "2024-03-15" {
		t.Errorf("Expected last row from March, got %+v", report[4])
	}
}

func TestTotals(t *testing.T) {
	supply, tax, amount := Totals(sample())
	if !amount.Equal(supply.Add(tax)) {
		t.Errorf("Expected amount = supply + tax, got %s %s %s", supply, tax, amount)
	}
	if !supply.Equal(d(13000)) {
		t.Errorf("Expected supply 13000, got %s", supply)
	}
}
