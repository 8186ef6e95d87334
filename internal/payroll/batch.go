package payroll

import "errors"

// ErrBatchClosed is returned when a document is added to a batch that already produced its report
var ErrBatchClosed = errors.New("batch is closed")

// Outcome is the result of adding one document to a batch
type Outcome struct {
	Receipt  Receipt  `json:"receipt"`
	Decision Decision `json:"decision"`
}

// Batch accumulates receipts in arrival order until Close produces the report.
// A Batch owns its ledger; nothing carries over from one batch to the next.
type Batch struct {
	extractor *Extractor
	ledger    *Ledger
	accepted  []Receipt
	rejected  []Rejection
	report    *BatchReport
}

// NewBatch creates an empty Batch that reads documents with the given extractor
func NewBatch(extractor *Extractor) *Batch {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Batch{
		extractor: extractor,
		ledger:    NewLedger(),
	}
}

// Add extracts the fields of doc and admits the receipt
func (b *Batch) Add(doc Document) (Outcome, error) {
	return b.admit(Receipt{
		Source: doc.Name,
		Fields: b.extractor.Extract(doc.Text),
	})
}

func (b *Batch) admit(r Receipt) (Outcome, error) {
	if b.report != nil {
		return Outcome{}, ErrBatchClosed
	}

	d := b.ledger.Admit(r.Identifier, r.Source)
	if d.Status == Accepted {
		b.accepted = append(b.accepted, r)
	} else {
		b.rejected = append(b.rejected, Rejection{
			Identifier: r.Identifier,
			Source:     r.Source,
			Original:   d.Original,
		})
	}
	return Outcome{Receipt: r, Decision: d}, nil
}

// Close ends the batch and returns its report. Calling Close again returns the same report.
func (b *Batch) Close() BatchReport {
	if b.report == nil {
		r := Assemble(b.accepted, b.rejected)
		b.report = &r
	}
	return *b.report
}

// Ledger returns a snapshot of the batch ledger
func (b *Batch) Ledger() *Ledger {
	return b.ledger.clone()
}
