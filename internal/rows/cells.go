package rows

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RawRow is one untyped data row as delivered by a source, header excluded.
type RawRow []any

// Row reads a RawRow through a Layout.
type Row struct {
	Layout Layout
	Cells  RawRow
}

func NewRow(layout Layout, cells RawRow) Row {
	return Row{Layout: layout, Cells: cells}
}

func (r Row) cell(f Field) any {
	idx := r.Layout.Index(f)
	if idx < 0 || idx >= len(r.Cells) {
		return nil
	}
	return r.Cells[idx]
}

// String returns the cell as text. Empty, null, zero and false cells read as "".
func (r Row) String(f Field) string {
	return CellString(r.cell(f))
}

func (r Row) Trimmed(f Field) string {
	return strings.TrimSpace(r.String(f))
}

// Number parses the cell as a number after stripping thousands separators.
// Anything unparseable reads as zero.
func (r Row) Number(f Field) decimal.Decimal {
	return CellNumber(r.cell(f))
}

// CellString converts a raw cell value to text.
func CellString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		if n, err := decimal.NewFromString(value.String()); err == nil && n.IsZero() {
			return ""
		}
		return value.String()
	case float64:
		if value == 0 {
			return ""
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		if value == 0 {
			return ""
		}
		return strconv.Itoa(value)
	case int64:
		if value == 0 {
			return ""
		}
		return strconv.FormatInt(value, 10)
	case bool:
		if !value {
			return ""
		}
		return "true"
	default:
		return fmt.Sprintf("%v", value)
	}
}

// CellNumber converts a raw cell value to a decimal, defaulting to zero.
func CellNumber(v any) decimal.Decimal {
	switch value := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(value)
	case int:
		return decimal.NewFromInt(int64(value))
	case int64:
		return decimal.NewFromInt(value)
	case json.Number:
		return parseNumber(value.String())
	case string:
		return parseNumber(value)
	default:
		return decimal.Zero
	}
}

func parseNumber(raw string) decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return decimal.Zero
	}
	n, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return n
}
