package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/reader"
	"github.com/tosih/mrdf-tool/pkg/renderer"
)

// SavePDF renders the field sheet of the working buffer into a PDF document.
// The SHA-256 of the buffer is printed and embedded as a QR code.
func SavePDF(s *editor.Session, source, out string) error {
	p := s.Profile()
	if p == nil {
		return fmt.Errorf("no profile bound")
	}
	data := s.Snapshot()
	sum := Checksum(data)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("MRDF Field Sheet", false)
	pdf.SetAuthor("mrdf-tool", false)
	pdf.SetCreator("mrdf-tool", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "MRDF Field Sheet")
	if err := addChecksumQR(pdf, sum); err != nil {
		return err
	}
	addSummarySection(pdf, p, source, len(data), sum, s.State())
	addFieldsSection(pdf, p, data)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addChecksumQR(pdf *gofpdf.Fpdf, sum string) error {
	png, err := HashToQR(sum, 256)
	if err != nil {
		return fmt.Errorf("checksum qr: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("sha256", opts, bytes.NewReader(png))
	pageW, _ := pdf.GetPageSize()
	_, _, right, _ := pdf.GetMargins()
	pdf.ImageOptions("sha256", pageW-right-30, 15, 30, 30, false, opts, 0, "")
	return nil
}

func addSummarySection(pdf *gofpdf.Fpdf, p *models.Profile, source string, size int, sum string, state editor.State) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	items := []struct {
		label string
		value string
	}{
		{label: "File", value: filepath.Base(source)},
		{label: "Profile", value: fmt.Sprintf("%s (%s, v%d)", p.Label, p.Key, p.Version)},
		{label: "Size", value: strconv.Itoa(size) + " bytes"},
		{label: "State", value: state.String()},
		{label: "SHA-256", value: sum[:32]},
		{label: "", value: sum[32:]},
		{label: "Generated", value: time.Now().Format("2006-01-02 15:04:05")},
	}
	for _, item := range items {
		pdf.CellFormat(30, 5, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func addFieldsSection(pdf *gofpdf.Fpdf, p *models.Profile, data []byte) {
	headers := []string{"Name", "Offset", "Type", "Value", "Raw"}
	widths := []float64{52, 20, 20, 62, 26}

	section := "\x00"
	for _, fi := range reader.ReadFields(data, p) {
		if fi.Def.Section != section {
			section = fi.Def.Section
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 8, emptyFallback(section, "General"))
			pdf.Ln(9)

			pdf.SetFillColor(240, 240, 240)
			pdf.SetFont("Helvetica", "B", 9)
			for i, h := range headers {
				pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
			}
			pdf.Ln(-1)
			pdf.SetFont("Helvetica", "", 8)
		}

		value, raw := "out of range", "-"
		if fi.Err == nil {
			value = renderer.ValueString(fi.Value, fi.Def)
			raw = renderer.HexBytes(fi.Raw)
		}
		renderTableRow(pdf, widths, []string{
			fi.Def.Name,
			fmt.Sprintf("0x%04X", fi.Def.Offset),
			fi.Def.Type.String(),
			value,
			raw,
		}, 4.5)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := emptyFallback(val, "-")
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if yStart+rowHeight > pageH-bottom {
		pdf.AddPage()
		xStart, yStart = pdf.GetX(), pdf.GetY()
	}
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		pdf.MultiCell(widths[i], lineHeight, strings.Join(lines, "\n"), "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
