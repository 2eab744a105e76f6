package reconcile

import (
	"testing"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/rows"
)

func row(id, date, label, floor, client, item, qty, price, supply, tax, total, memo, ts string) rows.RawRow {
	return rows.RawRow{id, date, label, floor, client, item, "", "EA", qty, price, supply, tax, total, memo, ts}
}

func TestReconcileMultiRowTransaction(t *testing.T) {
	data := []rows.RawRow{
		row("T1", "2024-01-05", "거래명세서", "", "Acme", "A", "2", "1,000", "2,000", "200", "1", "first", ""),
		row("T1", "2024-01-05", "거래명세서", "", "Acme", "B", "1", "500", "500", "50", "999999", "second", ""),
	}

	txs := Reconcile(data)
	if len(txs) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if len(tx.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(tx.Items))
	}
	if tx.TotalSupplyPrice.String() != "2500" || tx.TotalTax.String() != "250" || tx.TotalAmount.String() != "2750" {
		t.Errorf("Unexpected totals: %s %s %s", tx.TotalSupplyPrice, tx.TotalTax, tx.TotalAmount)
	}
	if tx.Memo != "first" {
		t.Errorf("Expected memo from first row, got %s", tx.Memo)
	}
	if tx.Items[1].ProductID != "sheet-item-T1-1" {
		t.Errorf("Expected sheet-item-T1-1, got %s", tx.Items[1].ProductID)
	}
	if tx.ClientID != "" || tx.IsPaid {
		t.Errorf("Expected unlinked unpaid transaction, got %+v", tx)
	}
}

func TestReconcileTotalsIgnoreSourceTotal(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "", "", "Acme", "A", "1", "100", "100", "10", "not a number", "", ""),
	})
	for _, tx := range txs {
		if !tx.TotalAmount.Equal(tx.TotalSupplyPrice.Add(tx.TotalTax)) {
			t.Errorf("Total %s is not supply + tax", tx.TotalAmount)
		}
		if tx.TotalAmount.String() != "110" {
			t.Errorf("Expected 110, got %s", tx.TotalAmount)
		}
	}
}

func TestReconcileSplitOnClientMismatch(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "", "", "Acme", "A", "1", "100", "100", "10", "", "", ""),
		row("T1", "2024-01-05", "", "", "Other", "B", "1", "100", "100", "10", "", "", ""),
	})

	if len(txs) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(txs))
	}
	if txs[1].ID != "T1_split_1" {
		t.Errorf("Expected T1_split_1, got %s", txs[1].ID)
	}
	if txs[1].Items[0].ProductID != "sheet-item-T1_split_1-0" {
		t.Errorf("Unexpected product id %s", txs[1].Items[0].ProductID)
	}
	if len(txs[0].Items) != 1 {
		t.Errorf("Expected original transaction to keep 1 item, got %d", len(txs[0].Items))
	}
}

func TestReconcileSplitOnDateMismatch(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T1", "2023-10-15", "", "", "Acme", "A", "1", "1", "1", "0", "", "", ""),
		row("T1", "2023-10-15T15:00:00.000Z", "", "", "Acme", "B", "1", "1", "1", "0", "", "", ""),
	})

	if len(txs) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(txs))
	}
	if txs[1].Date != "2023-10-16" || txs[1].ID != "T1_split_1" {
		t.Errorf("Unexpected split transaction: %s %s", txs[1].ID, txs[1].Date)
	}
}

func TestReconcileSplitIsPermanent(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "", "", "Acme", "A", "", "", "", "", "", "", ""),
		row("T1", "2024-01-05", "", "", "Other", "B", "", "", "", "", "", "", ""),
		row("T1", "2024-01-05", "", "", "Other", "C", "", "", "", "", "", "", ""),
	})

	if len(txs) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(txs))
	}
	if txs[2].ID != "T1_split_2" {
		t.Errorf("Expected T1_split_2, got %s", txs[2].ID)
	}
}

func TestReconcileFloorBackfill(t *testing.T) {
	forward := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "", "", "Acme", "A", "", "", "", "", "", "", ""),
		row("T1", "2024-01-05", "", "1층", "Acme", "B", "", "", "", "", "", "", ""),
	})
	reverse := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "", "1층", "Acme", "A", "", "", "", "", "", "", ""),
		row("T1", "2024-01-05", "", "", "Acme", "B", "", "", "", "", "", "", ""),
	})

	for name, txs := range map[string][]model.Transaction{"forward": forward, "reverse": reverse} {
		if len(txs) != 1 {
			t.Fatalf("%s: expected 1 transaction, got %d", name, len(txs))
		}
		if txs[0].Floor != "1층" {
			t.Errorf("%s: expected floor 1층, got %q", name, txs[0].Floor)
		}
		if len(txs[0].Items) != 2 {
			t.Errorf("%s: expected 2 items, got %d", name, len(txs[0].Items))
		}
	}
}

func TestReconcileFloorBackfillOnSplitID(t *testing.T) {
	txs, stats := ReconcileWithStats([]rows.RawRow{
		row("A_split_2", "2024-01-05", "", "", "Beta", "X", "", "", "", "", "", "", ""),
		row("A", "2024-01-05", "", "", "Acme", "Y", "", "", "", "", "", "", ""),
		row("A", "2024-01-05", "", "1층", "Beta", "Z", "", "", "", "", "", "", ""),
	})

	if len(txs) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(txs))
	}
	tx := txs[0]
	if tx.ID != "A_split_2" || tx.ClientName != "Beta" {
		t.Fatalf("Unexpected first transaction %s %s", tx.ID, tx.ClientName)
	}
	if tx.Floor != "1층" {
		t.Errorf("Expected floor 1층, got %q", tx.Floor)
	}
	if len(tx.Items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(tx.Items))
	}
	if stats.Splits != 1 || stats.Backfills != 1 {
		t.Errorf("Expected 1 split and 1 backfill, got %+v", stats)
	}
}

func TestReconcileFloorConflictSplits(t *testing.T) {
	txs, stats := ReconcileWithStats([]rows.RawRow{
		row("T1", "2024-01-05", "", "1F", "Acme", "A", "", "", "", "", "", "", ""),
		row("T1", "2024-01-05", "", "2층", "Acme", "B", "", "", "", "", "", "", ""),
	})

	if len(txs) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Floor != "1층" || txs[1].Floor != "2층" {
		t.Errorf("Expected floors 1층/2층, got %q/%q", txs[0].Floor, txs[1].Floor)
	}
	if stats.Splits != 1 {
		t.Errorf("Expected 1 split, got %d", stats.Splits)
	}
}

func TestReconcileGeneratedID(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T0", "2024-01-01", "", "", "Acme", "", "", "", "", "", "", "", ""),
		row("", "", "", "", "", "X", "1", "1", "1", "1", "", "", ""),
		row("T2", "2024-01-01", "", "", "Acme", "", "", "", "", "", "", "", ""),
		row("", "2024-01-02", "", "", "Beta", "Y", "1", "1", "1", "0", "", "", ""),
	})

	if len(txs) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(txs))
	}
	if txs[2].ID != "gen-id-3" {
		t.Errorf("Expected gen-id-3, got %s", txs[2].ID)
	}
}

func TestReconcileSkipsEmptyRows(t *testing.T) {
	txs, stats := ReconcileWithStats([]rows.RawRow{
		row("T1", "2024-01-05", "", "", "Acme", "A", "1", "1", "1", "0", "", "", ""),
		row(" ", "2024-01-05", "", "", "  ", "Ghost", "5", "5", "25", "2", "", "", ""),
		{},
	})

	if len(txs) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(txs))
	}
	if len(txs[0].Items) != 1 {
		t.Errorf("Expected skipped row to add no item, got %d items", len(txs[0].Items))
	}
	if stats.Skipped != 2 {
		t.Errorf("Expected 2 skipped rows, got %d", stats.Skipped)
	}
}

func TestReconcileHeaderOnlyTransaction(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "견적서", "", "Acme", "", "", "", "", "", "", "memo", ""),
	})

	if len(txs) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(txs))
	}
	tx := txs[0]
	if len(tx.Items) != 0 || !tx.TotalAmount.IsZero() {
		t.Errorf("Expected empty transaction with zero totals, got %+v", tx)
	}
	if tx.Type != model.TransactionTypeQuotation {
		t.Errorf("Expected quotation, got %s", tx.Type)
	}
}

func TestReconcileTypeFromFirstRow(t *testing.T) {
	txs := Reconcile([]rows.RawRow{
		row("T1", "2024-01-05", "거래명세서", "", "Acme", "A", "", "", "", "", "", "", ""),
		row("T1", "2024-01-05", "견적서", "", "Acme", "B", "", "", "", "", "", "", ""),
	})

	if len(txs) != 1 || txs[0].Type != model.TransactionTypeStatement {
		t.Errorf("Expected a single statement, got %+v", txs)
	}
}

func TestReconcileEmpty(t *testing.T) {
	txs := Reconcile(nil)
	if txs == nil || len(txs) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", txs)
	}
}
