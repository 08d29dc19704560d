package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/karthiBP/aegis-incidents/internal/domain"
)

const (
	pdfMargin      = 20.0
	pdfLineHeight  = 5.0
	pdfBadgeWidth  = 15.0
	pdfBadgeHeight = 6.0
)

var severityColors = map[domain.Severity][3]int{
	domain.SeverityCritical: {220, 38, 38},
	domain.SeverityHigh:     {234, 88, 12},
	domain.SeverityMedium:   {202, 138, 4},
	domain.SeverityLow:      {22, 163, 74},
}

var priorityColors = map[domain.Priority][3]int{
	domain.PriorityP0: {220, 38, 38},
	domain.PriorityP1: {234, 88, 12},
	domain.PriorityP2: {202, 138, 4},
}

// PDFRenderer renders incidents to PDF documents.
type PDFRenderer struct {
	now func() time.Time
}

// NewPDFRenderer creates a new PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{now: time.Now}
}

// Render produces the PDF document for the incident.
func (r *PDFRenderer) Render(incident *domain.Incident) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)

	pdf.SetFooterFunc(func() {
		pageWidth, pageHeight := pdf.GetPageSize()
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(pdfMargin, pageHeight-20, pageWidth-pdfMargin, pageHeight-20)
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 5, "Generated by AEGIS INCIDENTS", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, r.now().UTC().Format("Jan 2, 2006 15:04 UTC"), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - pdfMargin*2

	// Title
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 64, 175)
	pdf.MultiCell(contentWidth, 10, incident.Title, "", "L", false)
	pdf.Ln(2)

	// Metadata bar
	pdf.SetFillColor(240, 240, 245)
	pdf.SetFont("Helvetica", "", 10)
	sevColor, ok := severityColors[incident.Severity]
	if !ok {
		sevColor = [3]int{100, 100, 100}
	}
	pdf.SetTextColor(sevColor[0], sevColor[1], sevColor[2])
	meta := fmt.Sprintf("Type: %s  |  Severity: %s  |  Status: %s",
		incident.IncidentType, incident.Severity, incident.Status)
	pdf.CellFormat(contentWidth, 10, meta, "", 1, "L", true, 0, "")
	pdf.Ln(2)

	// Dates
	end := incident.EndTime
	if end == "" {
		end = "Ongoing"
	}
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Start: %s  |  End: %s", incident.StartTime, end), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Divider
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdfMargin, pdf.GetY(), pageWidth-pdfMargin, pdf.GetY())
	pdf.Ln(6)

	r.section(pdf, contentWidth, "Root Cause", incident.RootCause)
	r.section(pdf, contentWidth, "Impact", incident.Impact)
	r.section(pdf, contentWidth, "Resolution", incident.Resolution)

	if len(incident.Timeline) > 0 {
		r.sectionHeading(pdf, "Timeline")
		for _, entry := range incident.Timeline {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.SetTextColor(30, 64, 175)
			timeWidth := pdf.GetStringWidth(entry.Timestamp) + 4
			pdf.CellFormat(timeWidth, pdfLineHeight, entry.Timestamp, "", 0, "L", false, 0, "")

			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(60, 60, 60)
			pdf.MultiCell(contentWidth-timeWidth, pdfLineHeight, entry.Description, "", "L", false)
			pdf.Ln(1)
		}
		pdf.Ln(3)
	}

	if len(incident.ActionItems) > 0 {
		r.sectionHeading(pdf, "Action Items")
		for _, item := range incident.ActionItems {
			color, ok := priorityColors[item.Priority]
			if !ok {
				color = [3]int{100, 100, 100}
			}

			y := pdf.GetY()
			pdf.SetFillColor(color[0], color[1], color[2])
			pdf.RoundedRect(pdfMargin, y, pdfBadgeWidth, pdfBadgeHeight, 1, "1234", "F")
			pdf.SetFont("Helvetica", "B", 7)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetXY(pdfMargin, y)
			pdf.CellFormat(pdfBadgeWidth, pdfBadgeHeight, string(item.Priority), "", 0, "C", false, 0, "")

			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(60, 60, 60)
			pdf.SetXY(pdfMargin+pdfBadgeWidth+5, y)
			pdf.MultiCell(contentWidth-pdfBadgeWidth-5, pdfBadgeHeight,
				fmt.Sprintf("%s (Owner: %s)", item.Action, item.Owner), "", "L", false)
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) section(pdf *fpdf.Fpdf, width float64, heading, body string) {
	if body == "" {
		return
	}
	r.sectionHeading(pdf, heading)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(60, 60, 60)
	pdf.MultiCell(width, pdfLineHeight+1, body, "", "L", false)
	pdf.Ln(3)
}

func (r *PDFRenderer) sectionHeading(pdf *fpdf.Fpdf, heading string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(30, 30, 30)
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}
