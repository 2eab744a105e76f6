package model

import "github.com/shopspring/decimal"

var vatRate = decimal.NewFromFloat(0.1)

// RecomputeTotals overwrites the aggregate totals from the items. Totals
// reported by the source are never trusted.
func (t *Transaction) RecomputeTotals() {
	supply := decimal.Zero
	tax := decimal.Zero
	for _, item := range t.Items {
		supply = supply.Add(item.SupplyPrice)
		tax = tax.Add(item.Tax)
	}
	t.TotalSupplyPrice = supply
	t.TotalTax = tax
	t.TotalAmount = supply.Add(tax)
}

// PriceItem fills SupplyPrice and Tax from quantity and unit price, with tax
// at 10% rounded down to the won.
func PriceItem(item TransactionItem) TransactionItem {
	item.SupplyPrice = item.Quantity.Mul(item.UnitPrice)
	item.Tax = item.SupplyPrice.Mul(vatRate).Floor()
	return item
}
