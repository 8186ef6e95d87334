package payroll

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func folioDoc(name, id string) Document {
	return Document{
		Name: name,
		Text: fmt.Sprintf("No. DE COMPROBANTE\n%s\nPERCEPCIONES\nSUELDO $ 1,000.00\nIMPUESTO SOBRE LA RENTA 100.00", id),
	}
}

var _ = Describe("Batch", func() {
	var batch *Batch

	BeforeEach(func() {
		batch = NewBatch(nil)
	})

	When("documents share an identifier", func() {
		var outcomes []Outcome

		BeforeEach(func() {
			outcomes = nil
			for _, doc := range []Document{
				folioDoc("d1.pdf", "11111111"),
				folioDoc("d2.pdf", "11111111"),
				folioDoc("d3.pdf", "11111111"),
			} {
				o, err := batch.Add(doc)
				Expect(err).NotTo(HaveOccurred())
				outcomes = append(outcomes, o)
			}
		})

		It("accepts only the first", func() {
			Expect(outcomes[0].Decision.Status).To(Equal(Accepted))
			Expect(outcomes[1].Decision).To(Equal(Decision{Status: RejectedDuplicate, Original: "d1.pdf"}))
			Expect(outcomes[2].Decision).To(Equal(Decision{Status: RejectedDuplicate, Original: "d1.pdf"}))
		})

		It("reports the rejections in order", func() {
			report := batch.Close()
			Expect(report.Accepted).To(HaveLen(1))
			Expect(report.Accepted[0].Source).To(Equal("d1.pdf"))
			Expect(report.Rejected).To(Equal([]Rejection{
				{Identifier: "11111111", Source: "d2.pdf", Original: "d1.pdf"},
				{Identifier: "11111111", Source: "d3.pdf", Original: "d1.pdf"},
			}))
		})

		It("counts only the accepted receipt in the totals", func() {
			Expect(batch.Close().Totals.Global).To(Equal(Sum{Gross: 1000, Tax: 100}))
		})

		It("leaves one ledger entry for the first file", func() {
			Expect(batch.Ledger().Entries()).To(Equal(map[string]string{"11111111": "d1.pdf"}))
		})
	})

	When("documents have no identifier", func() {
		It("accepts both", func() {
			_, err := batch.Add(Document{Name: "a.pdf", Text: "blank"})
			Expect(err).NotTo(HaveOccurred())
			_, err = batch.Add(Document{Name: "b.pdf", Text: ""})
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.Close().Accepted).To(HaveLen(2))
		})
	})

	When("the batch is closed", func() {
		BeforeEach(func() {
			batch.Close()
		})

		It("refuses new documents", func() {
			_, err := batch.Add(folioDoc("late.pdf", "22222222"))
			Expect(err).To(MatchError(ErrBatchClosed))
		})

		It("returns the same report again", func() {
			Expect(batch.Close()).To(Equal(batch.Close()))
		})
	})

	When("nothing was added", func() {
		It("produces an empty report", func() {
			report := batch.Close()
			Expect(report.Accepted).To(BeEmpty())
			Expect(report.Rejected).To(BeEmpty())
			Expect(report.Totals).To(Equal(Totals{}))
		})
	})
})

var _ = Describe("Assemble", func() {
	It("copies its inputs", func() {
		accepted := []Receipt{receipt(10, 1, false)}
		report := Assemble(accepted, nil)
		accepted[0].Gross = 999
		Expect(report.Accepted[0].Gross).To(Equal(10.0))
		Expect(report.Rejected).NotTo(BeNil())
	})
})

var _ = Describe("Pipeline", func() {
	var (
		docs    []Document
		workers int
		report  BatchReport
	)

	BeforeEach(func() {
		docs = nil
		for i := 0; i < 40; i++ {
			// every fifth document repeats the identifier of the one before it
			id := fmt.Sprintf("%08d", i-i%5/4)
			docs = append(docs, folioDoc(fmt.Sprintf("doc-%02d.pdf", i), id))
		}
	})

	JustBeforeEach(func() {
		report = (&Pipeline{Extractor: NewExtractor(), Workers: workers}).Run(docs)
	})

	When("running sequentially", func() {
		BeforeEach(func() {
			workers = 1
		})

		It("accepts and rejects in arrival order", func() {
			Expect(report.Accepted).To(HaveLen(32))
			Expect(report.Rejected).To(HaveLen(8))
			Expect(report.Rejected[0]).To(Equal(Rejection{Identifier: "00000003", Source: "doc-04.pdf", Original: "doc-03.pdf"}))
		})
	})

	When("extracting in parallel", func() {
		BeforeEach(func() {
			workers = 8
		})

		It("produces the same report as a sequential run", func() {
			Expect(report).To(Equal(NewPipeline(1).Run(docs)))
		})

		It("keeps accepted receipts in arrival order", func() {
			for i := 1; i < len(report.Accepted); i++ {
				Expect(report.Accepted[i].Source > report.Accepted[i-1].Source).To(BeTrue())
			}
		})
	})

	When("the batch is empty", func() {
		BeforeEach(func() {
			docs = nil
			workers = 4
		})

		It("returns zero totals and empty lists", func() {
			Expect(report.Accepted).To(BeEmpty())
			Expect(report.Rejected).To(BeEmpty())
			Expect(report.Totals).To(Equal(Totals{}))
		})
	})
})
