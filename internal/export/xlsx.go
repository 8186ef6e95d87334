package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/payroll-tracker/internal/payroll"
)

const (
	receiptsSheet = "Receipts"
	totalsSheet   = "Totals"
)

// WriteXLSX writes a workbook with the accepted receipts and the batch totals
func WriteXLSX(w io.Writer, report payroll.BatchReport) error {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes the receipts sheet
	if err := f.SetSheetName(f.GetSheetName(0), receiptsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("creating totals sheet: %w", err)
	}

	if err := writeRow(f, receiptsSheet, 1, toAny(Columns)...); err != nil {
		return err
	}
	for i, r := range report.Accepted {
		if err := writeRow(f, receiptsSheet, i+2, r.Source, r.Identifier, cents(r.Gross), cents(r.Tax), r.Classification()); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(receiptsSheet, "A", "A", 40)
	_ = f.SetColWidth(receiptsSheet, "B", "B", 16)
	_ = f.SetColWidth(receiptsSheet, "C", "D", 14)
	_ = f.SetColWidth(receiptsSheet, "E", "E", 16)

	t := report.Totals
	rows := [][]any{
		{"group", "gross_pay", "tax"},
		{"ordinary", cents(t.Ordinary.Gross), cents(t.Ordinary.Tax)},
		{"bonus", cents(t.Bonus.Gross), cents(t.Bonus.Tax)},
		{"global", cents(t.Global.Gross), cents(t.Global.Tax)},
		{"net", cents(t.Net)},
	}
	for i, values := range rows {
		if err := writeRow(f, totalsSheet, i+1, values...); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(totalsSheet, "A", "C", 14)

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// cents rounds to two decimals so cells do not show float noise
func cents(v float64) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
