package excel

import (
	"fmt"
	"io"

	"jeongsim_ledger/internal/model"
	"jeongsim_ledger/internal/report"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SalesReportSheet     = "매출보고서"
	DeliverySummarySheet = "납품집계표"
)

var (
	salesReportHeader     = []interface{}{"일자", "구분", "거래처", "품목", "규격", "단가", "수량", "공급가액", "세액", "합계"}
	deliverySummaryHeader = []interface{}{"품목", "규격", "단위", "수량", "단가", "공급가액", "세액", "합계"}
)

// WriteSalesReport writes the flattened report rows followed by a totals row.
func WriteSalesReport(w io.Writer, lines []report.ReportRow) error {
	file, err := newWorkbook(SalesReportSheet, salesReportHeader)
	if err != nil {
		return err
	}
	defer file.Close()

	supply, tax := decimal.Zero, decimal.Zero
	for i, line := range lines {
		values := []interface{}{
			line.Date,
			line.Type,
			line.ClientName,
			line.Name,
			line.Spec,
			number(line.UnitPrice),
			number(line.Quantity),
			number(line.SupplyPrice),
			number(line.Tax),
			number(line.SupplyPrice.Add(line.Tax)),
		}
		if err := setRow(file, SalesReportSheet, i+2, values); err != nil {
			return err
		}
		supply = supply.Add(line.SupplyPrice)
		tax = tax.Add(line.Tax)
	}

	totals := []interface{}{"합계", "", "", "", "", "", "", number(supply), number(tax), number(supply.Add(tax))}
	if err := setRow(file, SalesReportSheet, len(lines)+2, totals); err != nil {
		return err
	}

	return write(file, w)
}

// WriteDeliverySummary writes aggregated items followed by a totals row.
func WriteDeliverySummary(w io.Writer, items []model.TransactionItem) error {
	file, err := newWorkbook(DeliverySummarySheet, deliverySummaryHeader)
	if err != nil {
		return err
	}
	defer file.Close()

	supply, tax := decimal.Zero, decimal.Zero
	for i, item := range items {
		values := []interface{}{
			item.Name,
			item.Spec,
			item.Unit,
			number(item.Quantity),
			number(item.UnitPrice),
			number(item.SupplyPrice),
			number(item.Tax),
			number(item.SupplyPrice.Add(item.Tax)),
		}
		if err := setRow(file, DeliverySummarySheet, i+2, values); err != nil {
			return err
		}
		supply = supply.Add(item.SupplyPrice)
		tax = tax.Add(item.Tax)
	}

	totals := []interface{}{"합계", "", "", "", "", number(supply), number(tax), number(supply.Add(tax))}
	if err := setRow(file, DeliverySummarySheet, len(items)+2, totals); err != nil {
		return err
	}

	return write(file, w)
}

func newWorkbook(sheet string, header []interface{}) (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := setRow(file, sheet, 1, header); err != nil {
		file.Close()
		return nil, err
	}

	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		file.Close()
		return nil, err
	}
	if err := file.SetCellStyle(sheet, "A1", last, style); err != nil {
		file.Close()
		return nil, fmt.Errorf("apply header style: %w", err)
	}
	return file, nil
}

func setRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func write(file *excelize.File, w io.Writer) error {
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// number keeps integral amounts as integers so the workbook shows 1500
// rather than 1500.0.
func number(v decimal.Decimal) interface{} {
	if v.IsInteger() {
		return v.IntPart()
	}
	return v.InexactFloat64()
}
