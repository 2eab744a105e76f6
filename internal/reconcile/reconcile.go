// Package reconcile groups transaction sheet rows into transactions.
package reconcile

import (
	"errors"
	"fmt"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/rows"

	"github.com/rs/zerolog/log"
)

// Stats summarizes one reconciliation pass.
type Stats struct {
	Rows         int `json:"rows"`
	Skipped      int `json:"skipped"`
	Splits       int `json:"splits"`
	Backfills    int `json:"backfills"`
	Items        int `json:"items"`
	Transactions int `json:"transactions"`
}

// accumulator is the fold state of a single Reconcile call.
type accumulator struct {
	index map[string]int
	txs   []model.Transaction
	stats Stats
}

func newAccumulator(capacity int) *accumulator {
	return &accumulator{
		index: make(map[string]int, capacity),
		txs:   make([]model.Transaction, 0, capacity),
	}
}

// Reconcile is ReconcileWithStats without the stats.
func Reconcile(data []rows.RawRow) []model.Transaction {
	txs, _ := ReconcileWithStats(data)
	return txs
}

// ReconcileWithStats builds transactions from rows in source order.
// Transactions are returned in the order their ids were first seen, with
// totals recomputed from their items.
func ReconcileWithStats(data []rows.RawRow) ([]model.Transaction, Stats) {
	acc := newAccumulator(len(data))
	for i, cells := range data {
		row, err := rows.ParseTransactionRow(i, cells)
		if err != nil {
			if !errors.Is(err, rows.ErrEmptyRow) {
				log.Warn().Err(err).Int("row", i).Msg("Skipping unreadable transaction row")
			}
			acc.stats.Skipped++
			continue
		}
		acc.add(row)
	}
	acc.stats.Rows = len(data)

	for i := range acc.txs {
		acc.txs[i].RecomputeTotals()
	}
	acc.stats.Transactions = len(acc.txs)

	log.Debug().
		Int("rows", acc.stats.Rows).
		Int("skipped", acc.stats.Skipped).
		Int("splits", acc.stats.Splits).
		Int("backfills", acc.stats.Backfills).
		Int("transactions", acc.stats.Transactions).
		Msg("Reconciled transaction rows")

	return acc.txs, acc.stats
}

func (a *accumulator) add(row rows.TransactionRow) {
	id := row.ID

	if pos, ok := a.index[id]; ok {
		existing := &a.txs[pos]
		if !row.SameGroup(existing) {
			id = fmt.Sprintf("%s_split_%d", row.ID, row.Index)
			a.stats.Splits++
			log.Debug().
				Str("source_id", row.ID).
				Str("split_id", id).
				Str("client", row.ClientName).
				Str("date", row.Date).
				Msg("Id collision, splitting transaction")
		}
	}

	pos, ok := a.index[id]
	if ok {
		// A split id can land on an existing transaction too.
		if existing := &a.txs[pos]; existing.Floor == "" && row.Floor != "" {
			existing.Floor = row.Floor
			a.stats.Backfills++
		}
	} else {
		a.txs = append(a.txs, model.Transaction{
			ID:         id,
			Date:       row.Date,
			Type:       row.Type,
			ClientName: row.ClientName,
			Floor:      row.Floor,
			Memo:       row.Memo,
			Items:      []model.TransactionItem{},
		})
		pos = len(a.txs) - 1
		a.index[id] = pos
	}

	if row.Item != nil {
		tx := &a.txs[pos]
		item := *row.Item
		item.ProductID = fmt.Sprintf("sheet-item-%s-%d", id, len(tx.Items))
		tx.Items = append(tx.Items, item)
		a.stats.Items++
	}
}
