package batch

import (
	"bytes"
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/zombor/payroll-tracker/internal/payroll"
)

var _ = Describe("Service", func() {
	var (
		db       *mockDB
		storage  *mockStorage
		renderer *mockRenderer
		idGen    *mockIDGenerator
		clock    *mockTimeSource
		service  *Service
	)

	BeforeEach(func() {
		db = newMockDB()
		storage = newMockStorage()
		renderer = newMockRenderer()
		idGen = &mockIDGenerator{id: "batch-1"}
		clock = &mockTimeSource{now: time.Date(2024, 12, 20, 10, 0, 0, 0, time.UTC)}
		service = NewServiceWithDeps(db, renderer, storage, payroll.NewPipeline(4), idGen, clock)
	})

	Describe("sanitizeFilename", func() {
		DescribeTable("cleans names for storage",
			func(in, want string) {
				Expect(sanitizeFilename(in)).To(Equal(want))
			},
			Entry("plain", "recibo.pdf", "recibo.pdf"),
			Entry("spaces and accents", "Recibo  de Nómina (1).PDF", "Recibo_de_Nmina_1.pdf"),
			Entry("path components", "../../etc/passwd", "passwd"),
			Entry("windows path", `C:\scans\enero.pdf`, "enero.pdf"),
			Entry("nothing left", "###.pdf", "recibo.pdf"),
			Entry("long names", "a123456789b123456789c123456789d123456789e123456789f123456789.txt",
				"a123456789b123456789c123456789d123456789e123456789.txt"),
		)
	})

	Describe("ProcessBatch", func() {
		var (
			uploads []Upload
			batch   *Batch
			err     error
		)

		BeforeEach(func() {
			uploads = []Upload{
				{Filename: "enero.txt", ContentType: "text/plain", Data: []byte(receiptText("00000101", "10,000.00", "1,500.00"))},
				{Filename: "aguinaldo.pdf", ContentType: "application/pdf", Data: []byte(receiptText("00000102", "20,000.00", "3,100.00") + "PAGO DE AGUINALDO\n")},
				{Filename: "enero copia.txt", Data: []byte(receiptText("00000101", "10,000.00", "1,500.00") + " ")},
			}
		})

		JustBeforeEach(func() {
			batch, err = service.ProcessBatch(context.Background(), uploads)
		})

		When("the uploads contain a duplicate receipt", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should use the generated id and current time", func() {
				Expect(batch.ID).To(Equal("batch-1"))
				Expect(batch.CreatedAt).To(Equal(clock.now))
			})

			It("should accept the first occurrence and reject the copy", func() {
				Expect(batch.Report.Accepted).To(HaveLen(2))
				Expect(batch.Report.Accepted[0].Source).To(Equal("enero.txt"))
				Expect(batch.Report.Accepted[1].Source).To(Equal("aguinaldo.pdf"))
				Expect(batch.Report.Rejected).To(ConsistOf(payroll.Rejection{
					Identifier: "00000101",
					Source:     "enero copia.txt",
					Original:   "enero.txt",
				}))
			})

			It("should total by classification", func() {
				totals := batch.Report.Totals
				Expect(totals.Ordinary.Gross).To(BeNumerically("~", 10000, 0.001))
				Expect(totals.Bonus.Gross).To(BeNumerically("~", 20000, 0.001))
				Expect(totals.Global.Tax).To(BeNumerically("~", 4600, 0.001))
				Expect(totals.Net).To(BeNumerically("~", 25400, 0.001))
			})

			It("should store every original upload under the batch", func() {
				Expect(storage.files).To(HaveKey("batch-1/001_enero.txt"))
				Expect(storage.files).To(HaveKey("batch-1/002_aguinaldo.pdf"))
				Expect(storage.files).To(HaveKey("batch-1/003_enero_copia.txt"))
				Expect(batch.Files[2].StoredAs).To(Equal("batch-1/003_enero_copia.txt"))
			})

			It("should guess missing content types from the filename", func() {
				Expect(batch.Files[2].ContentType).To(Equal("text/plain"))
				Expect(renderer.contentTypes).To(ConsistOf("text/plain", "application/pdf", "text/plain"))
			})

			It("should archive the batch", func() {
				Expect(db.batches).To(HaveKeyWithValue("batch-1", batch))
			})
		})

		When("no files are given", func() {
			BeforeEach(func() {
				uploads = nil
			})

			It("should return ErrNoFiles", func() {
				Expect(err).To(MatchError(ErrNoFiles))
				Expect(batch).To(BeNil())
			})
		})

		When("a file cannot be rendered", func() {
			BeforeEach(func() {
				renderer.failOn[string(uploads[1].Data)] = errors.New("corrupt pdf")
			})

			It("should keep the file in the report with an unknown identifier", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(batch.Report.Accepted).To(HaveLen(2))
				Expect(batch.Report.Accepted[1].Identifier).To(Equal(payroll.UnknownIdentifier))
				Expect(batch.Report.Accepted[1].Gross).To(BeZero())
			})

			It("should record the render error on the file", func() {
				Expect(batch.Files[1].RenderError).To(Equal("corrupt pdf"))
				Expect(batch.Files[1].TextChars).To(BeZero())
			})
		})

		When("the context is cancelled", func() {
			JustBeforeEach(func() {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				batch, err = service.ProcessBatch(ctx, uploads)
			})

			It("should return the context error without saving", func() {
				Expect(err).To(MatchError(context.Canceled))
				Expect(batch).To(BeNil())
				Expect(db.batches).To(HaveLen(1)) // from the outer JustBeforeEach
			})
		})

		When("storage fails", func() {
			BeforeEach(func() {
				storage.saveErr = errors.New("disk full")
			})

			It("should return an error and clean up", func() {
				Expect(err).To(MatchError(ContainSubstring("saving file")))
				Expect(storage.deleted).To(ConsistOf("batch-1"))
				Expect(db.batches).To(BeEmpty())
			})
		})

		When("the database save fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("db locked")
			})

			It("should remove the stored files", func() {
				Expect(err).To(MatchError(ContainSubstring("saving batch to database")))
				Expect(storage.deleted).To(ConsistOf("batch-1"))
				Expect(storage.files).To(BeEmpty())
			})
		})
	})

	Describe("ListBatches", func() {
		BeforeEach(func() {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			db.batches["a"] = &Batch{ID: "a", CreatedAt: base}
			db.batches["b"] = &Batch{ID: "b", CreatedAt: base.Add(48 * time.Hour)}
			db.batches["c"] = &Batch{ID: "c", CreatedAt: base.Add(24 * time.Hour)}
		})

		It("should return the newest batch first", func() {
			batches, err := service.ListBatches()
			Expect(err).NotTo(HaveOccurred())
			Expect(batches).To(HaveLen(3))
			Expect(batches[0].ID).To(Equal("b"))
			Expect(batches[1].ID).To(Equal("c"))
			Expect(batches[2].ID).To(Equal("a"))
		})

		It("should wrap database errors", func() {
			db.listErr = errors.New("boom")
			_, err := service.ListBatches()
			Expect(err).To(MatchError(ContainSubstring("listing batches")))
		})
	})

	Describe("GetBatch", func() {
		It("should report missing batches as not found", func() {
			_, err := service.GetBatch("missing")
			Expect(IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("DeleteBatch", func() {
		BeforeEach(func() {
			db.batches["batch-1"] = &Batch{ID: "batch-1"}
			storage.files["batch-1/001_a.txt"] = []byte("a")
		})

		It("should delete the batch and its files", func() {
			Expect(service.DeleteBatch("batch-1")).To(Succeed())
			Expect(db.batches).To(BeEmpty())
			Expect(storage.files).To(BeEmpty())
		})

		It("should still delete the batch when file cleanup fails", func() {
			storage.deleteErr = errors.New("permission denied")
			Expect(service.DeleteBatch("batch-1")).To(Succeed())
			Expect(db.batches).To(BeEmpty())
		})

		It("should fail for an unknown batch", func() {
			err := service.DeleteBatch("other")
			Expect(IsNotFound(err)).To(BeTrue())
			Expect(storage.deleted).To(BeEmpty())
		})
	})

	Describe("GetBatchFile", func() {
		BeforeEach(func() {
			db.batches["batch-1"] = &Batch{ID: "batch-1", Files: []File{
				{Name: "enero.pdf", StoredAs: "batch-1/001_enero.pdf", ContentType: "application/pdf"},
			}}
			storage.files["batch-1/001_enero.pdf"] = []byte("%PDF")
		})

		It("should return the stored file and its content type", func() {
			data, contentType, err := service.GetBatchFile("batch-1", "001_enero.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("%PDF")))
			Expect(contentType).To(Equal("application/pdf"))
		})

		It("should report unknown names as not found", func() {
			_, _, err := service.GetBatchFile("batch-1", "enero.pdf")
			Expect(IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("ExportBatch", func() {
		BeforeEach(func() {
			_, err := service.ProcessBatch(context.Background(), []Upload{
				{Filename: "enero.txt", Data: []byte(receiptText("00000101", "10,000.00", "1,500.00"))},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should export csv", func() {
			data, contentType, err := service.ExportBatch("batch-1", FormatCSV)
			Expect(err).NotTo(HaveOccurred())
			Expect(contentType).To(HavePrefix("text/csv"))
			Expect(string(data)).To(Equal(
				"source_file,identifier,gross_pay,tax,classification\n" +
					"enero.txt,00000101,10000.00,1500.00,ordinary\n"))
		})

		It("should export xlsx", func() {
			data, contentType, err := service.ExportBatch("batch-1", FormatXLSX)
			Expect(err).NotTo(HaveOccurred())
			Expect(contentType).To(ContainSubstring("spreadsheetml"))

			f, err := excelize.OpenReader(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()
			net, err := f.GetCellValue("Totals", "B5")
			Expect(err).NotTo(HaveOccurred())
			Expect(net).To(Equal("8500"))
		})

		It("should reject unknown formats", func() {
			_, _, err := service.ExportBatch("batch-1", "pdf")
			Expect(err).To(MatchError(ErrUnsupportedFormat))
		})

		It("should report unknown batches as not found", func() {
			_, _, err := service.ExportBatch("missing", FormatCSV)
			Expect(IsNotFound(err)).To(BeTrue())
		})
	})
})
