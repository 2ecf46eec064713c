package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin     = 15.0
	bodyLineHeight = 5.5
	snapshotImage  = "snapshot"
)

// Field is a label/value pair rendered in a document.
type Field struct {
	Label string
	Value string
}

// Section groups fields under an optional heading.
type Section struct {
	Heading string
	Fields  []Field
}

// Document is the text-mode representation of a form submission.
type Document struct {
	Title    string
	Meta     []Field
	Sections []Section
}

// PDFExporter renders datasets and documents into PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i := range data.Rows {
		for _, cell := range data.Record(i) {
			pdf.CellFormat(colWidth, 7, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderDocument lays a document out as wrapped text. Each block is measured
// against the remaining page height and moved to a new page when it does not fit.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	return output(layoutDocument(doc))
}

func layoutDocument(doc Document) *gofpdf.Fpdf {
	pdf := newDocumentPDF()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if doc.Title != "" {
		writeBlock(pdf, tr(doc.Title), "B", 16, 8)
		pdf.Ln(2)
	}
	for _, field := range doc.Meta {
		writeBlock(pdf, tr(fmt.Sprintf("%s: %s", field.Label, field.Value)), "", 10, bodyLineHeight)
	}
	if len(doc.Meta) > 0 {
		pdf.Ln(4)
	}

	for _, section := range doc.Sections {
		if section.Heading != "" {
			writeBlock(pdf, tr(section.Heading), "B", 12, 7)
			pdf.Ln(1)
		}
		for _, field := range section.Fields {
			writeBlock(pdf, tr(field.Label), "B", 10, bodyLineHeight)
			value := field.Value
			if strings.TrimSpace(value) == "" {
				value = "-"
			}
			writeBlock(pdf, tr(value), "", 10, bodyLineHeight)
			pdf.Ln(2)
		}
		pdf.Ln(3)
	}
	return pdf
}

// RenderSnapshot embeds a PNG snapshot of the rendered submission, scaled to page
// width and sliced across pages. When the image cannot be embedded it falls back
// to RenderDocument; fellBack reports which path produced the bytes.
func (e *PDFExporter) RenderSnapshot(doc Document, png []byte) (payload []byte, fellBack bool, err error) {
	payload, err = renderSnapshot(doc.Title, png)
	if err == nil {
		return payload, false, nil
	}
	payload, err = e.RenderDocument(doc)
	return payload, true, err
}

func renderSnapshot(title string, png []byte) (payload []byte, err error) {
	if len(png) == 0 {
		return nil, fmt.Errorf("snapshot image empty")
	}
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = fmt.Errorf("render snapshot: %v", r)
		}
	}()

	pdf := newDocumentPDF()
	pdf.SetTitle(title, true)
	info := pdf.RegisterImageOptionsReader(snapshotImage, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	if !pdf.Ok() || info == nil {
		return nil, fmt.Errorf("register snapshot: %w", pdf.Error())
	}

	pageW, pageH := pdf.GetPageSize()
	usableW := pageW - 2*pageMargin
	usableH := pageH - 2*pageMargin
	if info.Width() <= 0 {
		return nil, fmt.Errorf("snapshot has no width")
	}
	scaledH := info.Height() * usableW / info.Width()

	for offset := 0.0; offset < scaledH; offset += usableH {
		pdf.AddPage()
		pdf.ClipRect(pageMargin, pageMargin, usableW, usableH, false)
		pdf.ImageOptions(snapshotImage, pageMargin, pageMargin-offset, usableW, scaledH, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.ClipEnd()
	}

	return output(pdf)
}

func newDocumentPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	return pdf
}

// writeBlock wraps text to the usable width. The wrapped height is measured
// against the space left on the page: a block that fits on a fresh page is moved
// there whole, longer blocks break line by line.
func writeBlock(pdf *gofpdf.Fpdf, text, style string, size, lineHeight float64) {
	pdf.SetFont("Arial", style, size)
	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right
	bottom := pageH - pageMargin

	lines := pdf.SplitLines([]byte(text), width)
	blockHeight := float64(len(lines)) * lineHeight
	if pdf.GetY()+blockHeight > bottom && blockHeight <= bottom-pageMargin {
		pdf.AddPage()
		pdf.SetFont("Arial", style, size)
	}
	for _, line := range lines {
		if pdf.GetY()+lineHeight > bottom {
			pdf.AddPage()
			pdf.SetFont("Arial", style, size)
		}
		pdf.CellFormat(width, lineHeight, string(line), "", 1, "L", false, 0, "")
	}
}

// PageCount reports the number of pages the text-mode layout of doc needs.
func PageCount(doc Document) int {
	return layoutDocument(doc).PageCount()
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
