package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/normalize"
	"jeongsim_ledger/internal/retry"

	"github.com/rs/zerolog/log"
)

var (
	ErrClientRequired = errors.New("client name is required")
	ErrNoItems        = errors.New("at least one named item is required")
	// ErrRemoteSave means the transaction was stored locally but the
	// spreadsheet append failed.
	ErrRemoteSave = errors.New("saved locally, spreadsheet append failed")
)

var kst = time.FixedZone("KST", 9*60*60)

// Draft is a transaction entered by hand.
type Draft struct {
	ID            string                  `json:"id,omitempty"`
	Date          string                  `json:"date,omitempty"`
	Type          model.TransactionType   `json:"type,omitempty"`
	ClientID      string                  `json:"clientId,omitempty"`
	ClientName    string                  `json:"clientName"`
	ContactPerson string                  `json:"contactPerson,omitempty"`
	Floor         string                  `json:"floor,omitempty"`
	Items         []model.TransactionItem `json:"items"`
	IsPaid        bool                    `json:"isPaid,omitempty"`
	Memo          string                  `json:"memo,omitempty"`
}

func (s *Syncer) build(d Draft) (model.Transaction, error) {
	if strings.TrimSpace(d.ClientName) == "" {
		return model.Transaction{}, ErrClientRequired
	}

	items := make([]model.TransactionItem, 0, len(d.Items))
	for _, item := range d.Items {
		if item.Name == "" {
			continue
		}
		if item.SupplyPrice.IsZero() && item.Tax.IsZero() {
			item = model.PriceItem(item)
		}
		if item.ProductID == "" {
			item.ProductID = s.newID()
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return model.Transaction{}, ErrNoItems
	}

	tx := model.Transaction{
		ID:            d.ID,
		Date:          normalize.Date(d.Date),
		Type:          d.Type,
		ClientID:      d.ClientID,
		ClientName:    d.ClientName,
		ContactPerson: d.ContactPerson,
		Floor:         normalize.Floor(d.Floor),
		Items:         items,
		IsPaid:        d.IsPaid,
		Memo:          d.Memo,
	}
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	if tx.Date == "" {
		tx.Date = s.now().In(kst).Format("2006-01-02")
	}
	if !tx.Type.IsValid() {
		tx.Type = model.TransactionTypeStatement
	}

	tx.RecomputeTotals()
	tx.TotalAmount = tx.TotalAmount.Floor()
	return tx, nil
}

// Record validates a draft, saves it locally and then appends it to the
// remote spreadsheet. The local copy is kept when the append fails, in which
// case the returned error wraps ErrRemoteSave. Without a configured remote
// the transaction is only stored locally.
func (s *Syncer) Record(ctx context.Context, d Draft) (model.Transaction, error) {
	tx, err := s.build(d)
	if err != nil {
		return model.Transaction{}, err
	}

	if err := s.store.SaveTransaction(ctx, tx); err != nil {
		return model.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	err = s.appendRemote(ctx, tx)
	s.notifyRecorded(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Str("id", tx.ID).Msg("Spreadsheet append failed")
		return tx, fmt.Errorf("%w: %w", ErrRemoteSave, err)
	}

	log.Info().
		Str("id", tx.ID).
		Str("client", tx.ClientName).
		Str("type", string(tx.Type)).
		Str("total", tx.TotalAmount.String()).
		Msg("Transaction recorded")
	return tx, nil
}

func (s *Syncer) appendRemote(ctx context.Context, tx model.Transaction) error {
	info, err := s.store.GetCompanyInfo(ctx)
	if err != nil {
		return err
	}
	remote, err := s.resolve(ctx, info)
	if errors.Is(err, ErrNoSource) {
		log.Info().Str("id", tx.ID).Msg("No remote configured, transaction stored locally")
		return nil
	}
	if err != nil {
		return err
	}
	return retry.Do(ctx, s.opts.Resilience.SheetWrite, func(ctx context.Context) error {
		return remote.AppendTransaction(ctx, tx)
	})
}

func (s *Syncer) notifyRecorded(ctx context.Context, tx model.Transaction) {
	s.obsMutex.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.obsMutex.RUnlock()

	for _, o := range observers {
		if r, ok := o.(RecordObserver); ok {
			r.TransactionRecorded(ctx, tx)
		}
	}
}
