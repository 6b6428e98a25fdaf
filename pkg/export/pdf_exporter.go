package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Column widths in millimetres.
var pdfColumns = []struct {
	header string
	width  float64
}{
	{"Course", 30},
	{"Section", 18},
	{"Teacher", 45},
	{"Room", 25},
	{"Day", 26},
	{"Period", 18},
	{"Enrolled", 20},
}

// PDFExporter renders a timetable into a printable PDF table.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a one-table PDF document titled with the school name and a
// short form of the run ID.
func (e *PDFExporter) Render(tt Timetable) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	shortID := tt.RunID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	title := fmt.Sprintf("%s Timetable %s", tt.SchoolName, shortID)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 8, col.header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range tt.Rows {
		values := []string{
			row.CourseCode,
			strconv.Itoa(row.Section),
			row.Teacher,
			row.Room,
			dayName(row.Day),
			strconv.Itoa(row.Period),
			strconv.Itoa(row.Enrolled),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, values[i], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
