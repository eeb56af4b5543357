// Package export renders assessment statements and payment receipts for
// printing or filing, as CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Amount columns are right-aligned in PDF output.
var amountColumns = map[string]struct{}{
	"Amount": {},
	"Value":  {},
}

// Dataset defines tabular export content. Footer rows are summary lines
// (totals, balances) rendered after the body with emphasis.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Footer  []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Footer rows follow the
// body in order.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	writeRecord := func(row map[string]string) error {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		return writer.Write(record)
	}
	for _, row := range data.Rows {
		if err := writeRecord(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	for _, row := range data.Footer {
		if err := writeRecord(row); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PDFExporter renders datasets into a tabular document suitable for a
// printed statement or receipt.
type PDFExporter struct {
	now func() time.Time
}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{now: time.Now}
}

// Render creates a PDF with a centered title, the table body, emphasized
// footer rows and a generation timestamp.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	colWidth := 190.0 / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		writeRow(pdf, data.Headers, row, colWidth)
	}

	pdf.SetFont("Arial", "B", 9)
	for _, row := range data.Footer {
		writeRow(pdf, data.Headers, row, colWidth)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+e.now().UTC().Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(pdf *gofpdf.Fpdf, headers []string, row map[string]string, colWidth float64) {
	for _, header := range headers {
		align := ""
		if _, amount := amountColumns[header]; amount {
			align = "R"
		}
		pdf.CellFormat(colWidth, 7, row[header], "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
