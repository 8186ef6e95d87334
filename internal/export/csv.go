package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/zombor/payroll-tracker/internal/payroll"
)

// Columns are the headers shared by the CSV and XLSX exports
var Columns = []string{"source_file", "identifier", "gross_pay", "tax", "classification"}

// WriteCSV writes one row per accepted receipt, in batch order
func WriteCSV(w io.Writer, receipts []payroll.Receipt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range receipts {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", r.Source, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func row(r payroll.Receipt) []string {
	return []string{
		r.Source,
		r.Identifier,
		amount(r.Gross),
		amount(r.Tax),
		r.Classification(),
	}
}

// amount formats a value with exactly two decimals
func amount(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// finite reports whether v can be held by a decimal
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
