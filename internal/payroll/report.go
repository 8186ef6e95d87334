package payroll

// Rejection records a receipt skipped because its identifier was already in the batch
type Rejection struct {
	Identifier string `json:"identifier"`
	Source     string `json:"source"`   // the skipped file
	Original   string `json:"original"` // the file that was kept
}

// BatchReport is the result of a finished batch
type BatchReport struct {
	Accepted []Receipt   `json:"accepted"`
	Rejected []Rejection `json:"rejected"`
	Totals   Totals      `json:"totals"`
}

// Assemble packages the accepted receipts, the rejections and their totals into a BatchReport.
// The slices are copied so later changes by the caller do not reach the report.
func Assemble(accepted []Receipt, rejected []Rejection) BatchReport {
	return BatchReport{
		Accepted: append([]Receipt{}, accepted...),
		Rejected: append([]Rejection{}, rejected...),
		Totals:   Aggregate(accepted),
	}
}
