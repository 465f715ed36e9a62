package certificate

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Renderer draws an A4 landscape certificate with the core Helvetica font.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(c Certificate) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Blood Donation Certificate", true)
	pdf.SetCreator("bloodlink", true)
	pdf.SetCreationDate(c.IssuedAt)
	pdf.SetModificationDate(c.IssuedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetDrawColor(176, 18, 38)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, 277, 190, "D")

	pdf.SetTextColor(176, 18, 38)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetY(35)
	pdf.CellFormat(0, 14, "Certificate of Blood Donation", "", 1, "C", false, 0, "")

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "", 14)
	pdf.Ln(8)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, tr(c.DonorName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "donated blood and helped save lives.", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	rows := [][2]string{
		{"Donation date", c.DonationDate.Format("2 January 2006")},
		{"Blood group", c.BloodGroup},
		{"Volume", fmt.Sprintf("%d ml", c.VolumeMl)},
		{"Unit code", c.UnitCode},
		{"Facility", tr(c.Facility)},
	}
	for _, row := range rows {
		pdf.SetX(85)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(50, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(80, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.SetY(180)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Reference "+c.ProcessID.String(), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
