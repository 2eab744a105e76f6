package syncer

import "jeongsim_ledger/internal/model"

// sameTransactions reports whether two transaction sets hold the same
// transactions, ignoring order.
func sameTransactions(stored, pulled []model.Transaction) bool {
	if len(stored) != len(pulled) {
		return false
	}
	byID := make(map[string]model.Transaction, len(stored))
	for _, tx := range stored {
		byID[tx.ID] = tx
	}
	for _, tx := range pulled {
		old, ok := byID[tx.ID]
		if !ok || !sameTransaction(old, tx) {
			return false
		}
	}
	return true
}

func sameTransaction(a, b model.Transaction) bool {
	if a.Date != b.Date ||
		a.Type != b.Type ||
		a.ClientID != b.ClientID ||
		a.ClientName != b.ClientName ||
		a.ContactPerson != b.ContactPerson ||
		a.Floor != b.Floor ||
		a.IsPaid != b.IsPaid ||
		a.Memo != b.Memo ||
		!a.TotalSupplyPrice.Equal(b.TotalSupplyPrice) ||
		!a.TotalTax.Equal(b.TotalTax) ||
		!a.TotalAmount.Equal(b.TotalAmount) ||
		len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		x, y := a.Items[i], b.Items[i]
		if x.ProductID != y.ProductID ||
			x.Name != y.Name ||
			x.Spec != y.Spec ||
			x.Unit != y.Unit ||
			!x.Quantity.Equal(y.Quantity) ||
			!x.UnitPrice.Equal(y.UnitPrice) ||
			!x.SupplyPrice.Equal(y.SupplyPrice) ||
			!x.Tax.Equal(y.Tax) {
			return false
		}
	}
	return true
}
