package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/retry"
	"jeongsim_ledger/internal/rows"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// Source reads and appends ledger rows directly through the Sheets API,
// without the Apps Script web app.
type Source struct {
	client        *Client
	spreadsheetID string
	salesSheet    string
	estimateSheet string
	now           func() time.Time
}

func NewSource(client *Client, spreadsheetID, salesSheet, estimateSheet string) *Source {
	return &Source{
		client:        client,
		spreadsheetID: spreadsheetID,
		salesSheet:    salesSheet,
		estimateSheet: estimateSheet,
		now:           time.Now,
	}
}

// FetchRows reads sheet from its second row on. The first row is the header.
func (s *Source) FetchRows(ctx context.Context, sheet string) ([]rows.RawRow, error) {
	readRange := fmt.Sprintf("%s!A2:Z", sheet)
	log.Debug().Str("range", readRange).Msg("Reading sheet range")

	values, err := s.client.ReadSheet(ctx, s.spreadsheetID, readRange)
	if err != nil {
		return nil, classify(err)
	}

	data := make([]rows.RawRow, len(values))
	for i, v := range values {
		data[i] = rows.RawRow(v)
	}

	log.Debug().Str("sheet", sheet).Int("rows", len(data)).Msg("Read sheet rows")
	return data, nil
}

// SheetFor returns the sheet a transaction of type t is appended to.
func (s *Source) SheetFor(t model.TransactionType) string {
	if t == model.TransactionTypeQuotation {
		return s.estimateSheet
	}
	return s.salesSheet
}

// AppendTransaction writes one row per item of tx.
func (s *Source) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	encoded := rows.EncodeTransaction(tx, s.now().UTC().Format(time.RFC3339))
	values := make([][]interface{}, len(encoded))
	for i, r := range encoded {
		values[i] = []interface{}(r)
	}

	sheet := s.SheetFor(tx.Type)
	if err := s.client.AppendRows(ctx, s.spreadsheetID, sheet+"!A1", values); err != nil {
		return classify(err)
	}

	log.Info().
		Str("transaction_id", tx.ID).
		Str("sheet", sheet).
		Int("rows", len(values)).
		Msg("Appended transaction rows")
	return nil
}

func (s *Source) TestConnection(ctx context.Context) error {
	title, err := s.client.Title(ctx, s.spreadsheetID)
	if err != nil {
		return classify(err)
	}
	log.Debug().Str("title", title).Msg("Spreadsheet reachable")
	return nil
}

// classify marks client-side API errors as permanent so they are not retried.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return retry.Permanent(err)
	}
	return err
}
