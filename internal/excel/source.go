// Package excel reads ledger sheets from a local workbook and writes the
// sales report and delivery summary as xlsx.
package excel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/rows"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Source serves sheet rows from an xlsx export of the ledger spreadsheet.
// Each sheet's first row is its header.
type Source struct {
	path          string
	salesSheet    string
	estimateSheet string
	mutex         sync.Mutex
	now           func() time.Time
}

func NewSource(path, salesSheet, estimateSheet string) *Source {
	return &Source{
		path:          path,
		salesSheet:    salesSheet,
		estimateSheet: estimateSheet,
		now:           time.Now,
	}
}

// FetchRows returns the data rows of sheet. A sheet missing from the workbook
// reads as empty.
func (s *Source) FetchRows(ctx context.Context, sheet string) ([]rows.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	values, err := file.GetRows(sheet)
	if err != nil {
		var missing excelize.ErrSheetNotExist
		if errors.As(err, &missing) {
			log.Warn().Str("sheet", sheet).Str("file", s.path).Msg("Sheet not found in workbook")
			return []rows.RawRow{}, nil
		}
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}

	data := make([]rows.RawRow, 0, max(len(values)-1, 0))
	for index := 1; index < len(values); index++ {
		cells := values[index]
		row := make(rows.RawRow, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		data = append(data, row)
	}

	log.Debug().Str("sheet", sheet).Int("rows", len(data)).Msg("Read workbook rows")
	return data, nil
}

// AppendTransaction appends one row per item of tx below the last used row of
// the matching sheet and saves the workbook.
func (s *Source) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheet := s.salesSheet
	if tx.Type == model.TransactionTypeQuotation {
		sheet = s.estimateSheet
	}

	existing, err := file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet rows: %w", err)
	}

	next := len(existing) + 1
	for _, r := range rows.EncodeTransaction(tx, s.now().UTC().Format(time.RFC3339)) {
		cell, err := excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return err
		}
		values := []interface{}(r)
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", next, err)
		}
		next++
	}

	if err := file.Save(); err != nil {
		return fmt.Errorf("save excel file: %w", err)
	}

	log.Info().Str("transaction_id", tx.ID).Str("sheet", sheet).Msg("Appended transaction to workbook")
	return nil
}

// TestConnection checks that the workbook can be opened.
func (s *Source) TestConnection(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("open excel file: %w", err)
	}
	return file.Close()
}
