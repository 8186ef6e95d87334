package payroll

import "golang.org/x/sync/errgroup"

// Pipeline runs a whole batch of documents. Extraction may run on several workers;
// admission into the ledger always happens one document at a time in input order.
type Pipeline struct {
	Extractor *Extractor
	Workers   int
}

// NewPipeline creates a Pipeline with the default extractor
func NewPipeline(workers int) *Pipeline {
	return &Pipeline{
		Extractor: NewExtractor(),
		Workers:   workers,
	}
}

// Run processes docs in order and returns the batch report
func (p *Pipeline) Run(docs []Document) BatchReport {
	b := NewBatch(p.Extractor)
	for _, r := range p.extractAll(docs) {
		// a fresh batch is never closed
		_, _ = b.admit(r)
	}
	return b.Close()
}

// extractAll returns one receipt per document, indexed like docs
func (p *Pipeline) extractAll(docs []Document) []Receipt {
	ex := p.Extractor
	if ex == nil {
		ex = NewExtractor()
	}

	receipts := make([]Receipt, len(docs))
	if p.Workers <= 1 {
		for i, doc := range docs {
			receipts[i] = Receipt{Source: doc.Name, Fields: ex.Extract(doc.Text)}
		}
		return receipts
	}

	var g errgroup.Group
	g.SetLimit(p.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			receipts[i] = Receipt{Source: doc.Name, Fields: ex.Extract(doc.Text)}
			return nil
		})
	}
	_ = g.Wait()
	return receipts
}
