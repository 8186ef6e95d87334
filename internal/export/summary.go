package export

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/zombor/payroll-tracker/internal/payroll"
)

// WriteSummary writes the human-readable totals of a batch, followed by one line per skipped duplicate
func WriteSummary(w io.Writer, report payroll.BatchReport) error {
	t := report.Totals
	lines := []string{
		fmt.Sprintf("Receipts accepted: %d, duplicates skipped: %d", len(report.Accepted), len(report.Rejected)),
		"",
		fmt.Sprintf("%-10s %18s %18s", "", "Gross pay", "Tax"),
		fmt.Sprintf("%-10s %18s %18s", "Ordinary", Money(t.Ordinary.Gross), Money(t.Ordinary.Tax)),
		fmt.Sprintf("%-10s %18s %18s", "Bonus", Money(t.Bonus.Gross), Money(t.Bonus.Tax)),
		fmt.Sprintf("%-10s %18s %18s", "Global", Money(t.Global.Gross), Money(t.Global.Tax)),
		"",
		fmt.Sprintf("Net: %s", Money(t.Net)),
	}
	for _, r := range report.Rejected {
		lines = append(lines, fmt.Sprintf("WARNING: receipt %s in %s was already counted from %s and was skipped", r.Identifier, r.Source, r.Original))
	}
	for _, r := range report.Accepted {
		if r.Identifier == payroll.UnknownIdentifier {
			lines = append(lines, fmt.Sprintf("CHECK: no receipt number found in %s", r.Source))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}

// Money formats an amount as $1,234.56, with a leading minus for negative values
func Money(v float64) string {
	if !finite(v) {
		return "$" + strconv.FormatFloat(v, 'f', -1, 64)
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	n, _ := new(big.Int).SetString(whole, 10)
	return sign + "$" + humanize.BigComma(n) + "." + frac
}
