package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func samplePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("ContentTypeFor", func() {
	DescribeTable("mapping extensions",
		func(filename, expected string) {
			Expect(ContentTypeFor(filename)).To(Equal(expected))
		},
		Entry("pdf", "recibo.PDF", "application/pdf"),
		Entry("text", "recibo.txt", "text/plain"),
		Entry("jpeg", "foto.jpeg", "image/jpeg"),
		Entry("heic", "IMG_0001.HEIC", "image/heic"),
		Entry("unknown", "recibo.docx", "application/octet-stream"),
	)
})

var _ = Describe("normalizeContentType", func() {
	It("drops parameters and case", func() {
		Expect(normalizeContentType(" Text/Plain; charset=utf-8")).To(Equal("text/plain"))
	})
})

var _ = Describe("isHEICFormat", func() {
	It("detects a HEIC ftyp box", func() {
		data := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
		Expect(isHEICFormat(data)).To(BeTrue())
	})

	It("rejects short input", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})

	It("rejects other formats", func() {
		Expect(isHEICFormat(samplePNG())).To(BeFalse())
	})
})

var _ = Describe("pageImages", func() {
	It("passes PNG input through as a single page", func() {
		data := samplePNG()
		pages, err := pageImages(data, "image/png")
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(Equal([][]byte{data}))
	})

	It("rejects unsupported content types", func() {
		_, err := pageImages([]byte("x"), "application/zip")
		Expect(err).To(MatchError(ContainSubstring("unsupported content type")))
	})

	It("returns an error for undecodable images", func() {
		_, err := pageImages([]byte("not a jpeg"), "image/jpeg")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("PDF", func() {
	It("rejects non-PDF content types", func() {
		_, err := NewPDF().RenderText(context.Background(), []byte("x"), "image/png")
		Expect(err).To(HaveOccurred())
	})

	It("returns an error for data that is not a PDF", func() {
		_, err := NewPDF().RenderText(context.Background(), []byte("plain words"), "application/pdf")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Fitz", func() {
	It("rejects non-PDF content types", func() {
		_, err := NewFitz().RenderText(context.Background(), []byte("x"), "text/plain")
		Expect(err).To(MatchError(ContainSubstring("unsupported content type")))
	})
})
