package report

import (
	"cmp"
	"slices"

	"jeongsim_ledger/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ReportRow is one item line of the sales report.
type ReportRow struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	ClientName  string          `json:"clientName"`
	Name        string          `json:"name"`
	Spec        string          `json:"spec"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    decimal.Decimal `json:"quantity"`
	SupplyPrice decimal.Decimal `json:"supplyPrice"`
	Tax         decimal.Decimal `json:"tax"`
}

func newCollator() *collate.Collator {
	return collate.New(language.Korean)
}

// AggregateItems merges the items of txs by name for the delivery summary.
// The first occurrence of a name supplies spec, unit and unit price; quantity,
// supply price and tax are summed. The result is sorted by name.
func AggregateItems(txs []model.Transaction) []model.TransactionItem {
	index := make(map[string]int)
	items := []model.TransactionItem{}
	for _, tx := range txs {
		for _, item := range tx.Items {
			pos, ok := index[item.Name]
			if !ok {
				index[item.Name] = len(items)
				items = append(items, item)
				continue
			}
			existing := &items[pos]
			existing.Quantity = existing.Quantity.Add(item.Quantity)
			existing.SupplyPrice = existing.SupplyPrice.Add(item.SupplyPrice)
			existing.Tax = existing.Tax.Add(item.Tax)
		}
	}

	collator := newCollator()
	slices.SortStableFunc(items, func(a, b model.TransactionItem) int {
		return collator.CompareString(a.Name, b.Name)
	})
	return items
}

// FlattenReport lists every item of txs as a report row, oldest transaction
// first.
func FlattenReport(txs []model.Transaction) []ReportRow {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		return cmp.Compare(a.Date, b.Date)
	})

	out := []ReportRow{}
	for _, tx := range sorted {
		for _, item := range tx.Items {
			out = append(out, ReportRow{
				Date:        tx.Date,
				Type:        tx.Type.ReportLabel(),
				ClientName:  tx.ClientName,
				Name:        item.Name,
				Spec:        item.Spec,
				UnitPrice:   item.UnitPrice,
				Quantity:    item.Quantity,
				SupplyPrice: item.SupplyPrice,
				Tax:         item.Tax,
			})
		}
	}
	return out
}

// Totals sums supply price, tax and amount over txs.
func Totals(txs []model.Transaction) (supply, tax, amount decimal.Decimal) {
	for _, tx := range txs {
		supply = supply.Add(tx.TotalSupplyPrice)
		tax = tax.Add(tx.TotalTax)
		amount = amount.Add(tx.TotalAmount)
	}
	return supply, tax, amount
}
