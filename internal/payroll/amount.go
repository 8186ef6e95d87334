package payroll

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonAmountChars = regexp.MustCompile(`[^0-9.]`)

// NormalizeAmount turns a matched money string such as "$12,345.67" into a number.
// Everything except digits and decimal points is dropped before parsing. Input that
// still does not parse yields 0; this function never fails.
func NormalizeAmount(raw string) float64 {
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	if v, ok := parseAmount(cleaned); ok {
		return v
	}

	// "1.234.56": every point but the last is read as a grouping separator
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		joined := strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
		if v, ok := parseAmount(joined); ok {
			return v
		}
	}
	return 0
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
