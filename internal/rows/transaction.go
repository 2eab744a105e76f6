package rows

import (
	"errors"
	"fmt"
	"strings"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/normalize"
)

// ErrEmptyRow marks a transaction row with neither an id nor a client name.
var ErrEmptyRow = errors.New("row has no id and no client name")

// RowError reports why a raw row was rejected before reconciliation.
type RowError struct {
	Index  int
	Reason error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Reason)
}

func (e *RowError) Unwrap() error {
	return e.Reason
}

// TransactionRow is a validated row of the data or estimate sheet.
type TransactionRow struct {
	Index      int
	ID         string
	Date       string
	Type       model.TransactionType
	Floor      string
	ClientName string
	Memo       string
	Item       *model.TransactionItem
}

// ParseTransactionRow validates one row of a transaction sheet. Missing ids
// are replaced with an id derived from the row index. Numeric cells that fail
// to parse read as zero; the only rejection is a row with no id and no client.
func ParseTransactionRow(index int, cells RawRow) (TransactionRow, error) {
	row := NewRow(TransactionLayout, cells)

	id := row.Trimmed(FieldID)
	clientName := row.Trimmed(FieldClientName)
	if id == "" && clientName == "" {
		return TransactionRow{}, &RowError{Index: index, Reason: ErrEmptyRow}
	}
	if id == "" {
		id = fmt.Sprintf("gen-id-%d", index)
	}

	parsed := TransactionRow{
		Index:      index,
		ID:         id,
		Date:       normalize.Date(row.String(FieldDate)),
		Type:       model.TypeFromLabel(row.String(FieldDocType)),
		Floor:      normalize.Floor(row.String(FieldFloor)),
		ClientName: clientName,
		Memo:       row.String(FieldMemo),
	}

	if name := row.String(FieldItemName); name != "" {
		parsed.Item = &model.TransactionItem{
			Name:        name,
			Spec:        row.String(FieldSpec),
			Unit:        row.String(FieldUnit),
			Quantity:    row.Number(FieldQuantity),
			UnitPrice:   row.Number(FieldUnitPrice),
			SupplyPrice: row.Number(FieldSupplyPrice),
			Tax:         row.Number(FieldTax),
		}
	}

	return parsed, nil
}

// SameGroup reports whether r can be another line of a transaction already
// opened with the given client, date and floor. A floor only conflicts when
// both sides state one.
func (r TransactionRow) SameGroup(tx *model.Transaction) bool {
	if r.ClientName != tx.ClientName || r.Date != tx.Date {
		return false
	}
	if r.Floor != "" && tx.Floor != "" && r.Floor != tx.Floor {
		return false
	}
	return true
}

// EncodeTransaction renders a transaction as sheet rows, one per item, in
// TransactionLayout column order. A transaction without items still yields a
// single row so that the document is not lost.
func EncodeTransaction(tx model.Transaction, timestamp string) []RawRow {
	base := func() RawRow {
		r := make(RawRow, len(TransactionLayout))
		set := func(f Field, v any) { r[TransactionLayout.Index(f)] = v }
		set(FieldID, tx.ID)
		set(FieldDate, tx.Date)
		set(FieldDocType, tx.Type.Label())
		set(FieldFloor, tx.Floor)
		set(FieldClientName, strings.TrimSpace(tx.ClientName))
		set(FieldMemo, tx.Memo)
		set(FieldTimestamp, timestamp)
		for i := range r {
			if r[i] == nil {
				r[i] = ""
			}
		}
		return r
	}

	if len(tx.Items) == 0 {
		return []RawRow{base()}
	}

	out := make([]RawRow, 0, len(tx.Items))
	for _, item := range tx.Items {
		r := base()
		r[TransactionLayout.Index(FieldItemName)] = item.Name
		r[TransactionLayout.Index(FieldSpec)] = item.Spec
		r[TransactionLayout.Index(FieldUnit)] = item.Unit
		r[TransactionLayout.Index(FieldQuantity)] = item.Quantity.String()
		r[TransactionLayout.Index(FieldUnitPrice)] = item.UnitPrice.String()
		r[TransactionLayout.Index(FieldSupplyPrice)] = item.SupplyPrice.String()
		r[TransactionLayout.Index(FieldTax)] = item.Tax.String()
		r[TransactionLayout.Index(FieldTotal)] = item.SupplyPrice.Add(item.Tax).String()
		out = append(out, r)
	}
	return out
}
