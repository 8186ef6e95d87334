package payroll

import "slices"

// Sum holds the gross and tax totals of a group of receipts
type Sum struct {
	Gross float64 `json:"gross"`
	Tax   float64 `json:"tax"`
}

// Totals holds the per-classification and overall sums of a batch
type Totals struct {
	Ordinary Sum     `json:"ordinary"`
	Bonus    Sum     `json:"bonus"`
	Global   Sum     `json:"global"`
	Net      float64 `json:"net"` // global gross minus global tax, may be negative
}

// Aggregate sums gross pay and tax by classification. The result does not depend on
// the order of receipts: each column is summed in ascending order.
func Aggregate(receipts []Receipt) Totals {
	var ordinary, bonus []Receipt
	for _, r := range receipts {
		if r.Bonus {
			bonus = append(bonus, r)
		} else {
			ordinary = append(ordinary, r)
		}
	}

	t := Totals{
		Ordinary: sumOf(ordinary),
		Bonus:    sumOf(bonus),
	}
	t.Global = Sum{
		Gross: t.Ordinary.Gross + t.Bonus.Gross,
		Tax:   t.Ordinary.Tax + t.Bonus.Tax,
	}
	t.Net = t.Global.Gross - t.Global.Tax
	return t
}

func sumOf(receipts []Receipt) Sum {
	gross := make([]float64, 0, len(receipts))
	tax := make([]float64, 0, len(receipts))
	for _, r := range receipts {
		gross = append(gross, r.Gross)
		tax = append(tax, r.Tax)
	}
	return Sum{Gross: sortedSum(gross), Tax: sortedSum(tax)}
}

func sortedSum(values []float64) float64 {
	slices.Sort(values)
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
