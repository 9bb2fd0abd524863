package overlay

import (
	"github.com/jung-kurt/gofpdf"

	"github.com/opd-ai/bookpress/paginate"
)

// drawMarks draws the header text and page number of d onto the current
// page. Nothing else is painted so the page stays transparent when stamped.
func drawMarks(pdf *gofpdf.Fpdf, width, height float64, d paginate.Decision, translate func(string) string) {
	pdf.SetFont(d.Font, "", d.FontSize)
	pdf.SetTextColor(0, 0, 0)
	y := d.Baseline(height)

	if d.Header != "" {
		header := translate(d.Header)
		pdf.Text(d.HeaderX(width, pdf.GetStringWidth(header)), y, header)
	}

	number := translate(d.NumberText)
	pdf.Text(d.NumberX(width, pdf.GetStringWidth(number)), y, number)
}
