package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/movedocs/tariffworks/document"
)

// US Letter in points, with one-inch margins.
const (
	pdfMargin     = 72.0
	pdfPageWidth  = 612.0
	pdfPageHeight = 792.0

	headingSpacing = 10.0
	lineHeight     = 14.0
	tableRowHeight = 18.0
)

// PDFRenderer renders a content-block plan to PDF. It honors page-break
// hints and keeps headings attached to the content that follows them: a
// heading too close to the bottom of a page moves to the next one.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer() document.Renderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(ctx context.Context, blocks []document.ContentBlock) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if block.PageBreakBefore && i > 0 {
			pdf.AddPage()
		}

		switch block.Type {
		case document.BlockHeading:
			r.renderHeading(pdf, block)
		case document.BlockParagraph:
			r.renderParagraph(pdf, block.Text)
		case document.BlockTable:
			r.renderTable(pdf, block.Table)
		case document.BlockKeyValue:
			r.renderKeyValues(pdf, block.KeyValues)
		default:
			return nil, fmt.Errorf("unknown content block type %q", block.Type)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) renderHeading(pdf *fpdf.Fpdf, block document.ContentBlock) {
	size := 18.0
	switch block.Level {
	case 2:
		size = 14.0
	case 3:
		size = 12.0
	}

	// Orphan control: a heading near the page bottom starts the next page.
	if r.remaining(pdf) < size+3*lineHeight {
		pdf.AddPage()
	}

	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size+4, block.Text, "", "L", false)
	pdf.Ln(headingSpacing)
}

func (r *PDFRenderer) renderParagraph(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, lineHeight, text, "", "L", false)
	pdf.Ln(lineHeight / 2)
}

func (r *PDFRenderer) renderTable(pdf *fpdf.Fpdf, table *document.TableBlock) {
	if table == nil || len(table.Columns) == 0 {
		return
	}

	usable := pdfPageWidth - 2*pdfMargin
	colWidth := usable / float64(len(table.Columns))

	if table.Caption != "" {
		if r.remaining(pdf) < 4*tableRowHeight {
			pdf.AddPage()
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, lineHeight, table.Caption, "", "L", false)
		pdf.Ln(4)
	}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range table.Columns {
			pdf.CellFormat(colWidth, tableRowHeight, col, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(tableRowHeight)
	}

	drawHeader()
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range table.Rows {
		// Never split a row across pages; repeat the header after a break.
		if r.remaining(pdf) < tableRowHeight {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Helvetica", "", 9)
		}
		for i := range table.Columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(colWidth, tableRowHeight, cell, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(tableRowHeight)
	}
	pdf.Ln(lineHeight / 2)
}

func (r *PDFRenderer) renderKeyValues(pdf *fpdf.Fpdf, pairs []document.KeyValue) {
	if len(pairs) == 0 {
		return
	}

	needed := float64(len(pairs)) * tableRowHeight
	if r.remaining(pdf) < needed {
		pdf.AddPage()
	}

	usable := pdfPageWidth - 2*pdfMargin
	keyWidth := usable * 0.35
	valueWidth := usable - keyWidth

	for _, kv := range pairs {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(keyWidth, tableRowHeight, kv.Key, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(valueWidth, tableRowHeight, kv.Value, "1", 0, "L", false, 0, "")
		pdf.Ln(tableRowHeight)
	}
	pdf.Ln(lineHeight / 2)
}

// remaining returns the vertical space left before the bottom margin
func (r *PDFRenderer) remaining(pdf *fpdf.Fpdf) float64 {
	return pdfPageHeight - pdfMargin - pdf.GetY()
}
