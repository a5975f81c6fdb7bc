package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

// WritePDF lays out the three report pages: summary with charts, products
// purchased and the order table.
func WritePDF(w io.Writer, r *Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(fmt.Sprintf("Customer Report: %s", r.Customer.Name), true)
	pdf.SetCreator(r.Brand, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	heading := func(text string) {
		pdf.SetFont("Helvetica", "BU", 14)
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 12)
	}

	// page 1
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr("Customer Report: "+r.Customer.Name), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 12)
	if r.Narrative != "" {
		pdf.MultiCell(0, lineHeight, tr(r.Narrative), "", "L", false)
		pdf.Ln(3)
	}

	heading("Statistics")
	s := r.Stats
	for _, line := range []string{
		fmt.Sprintf("Total Orders: %d", s.TotalOrders),
		fmt.Sprintf("Total Revenue: $%s", s.TotalRevenue),
		fmt.Sprintf("Average Order: $%s (median $%s)", s.AverageOrder, s.MedianOrder),
		fmt.Sprintf("Status Breakdown: %s", formatRanked(s.TopStatuses)),
		fmt.Sprintf("Peak Purchase Month: %s", s.TopMonth),
	} {
		pdf.CellFormat(0, lineHeight, tr("- "+line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pageW, _ := pdf.GetPageSize()
	image := func(name string, png []byte, width float64) {
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		x := (pageW - width) / 2
		pdf.ImageOptions(name, x, -1, width, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.Ln(2)
	}
	heading(fmt.Sprintf("Orders Over Last %d Months", HistogramMonths))
	image("orders-chart", r.OrdersChart, 150)
	heading("Toy Category Distribution")
	image("category-chart", r.CategoryChart, 120)

	// page 2
	pdf.AddPage()
	heading("Products Purchased")
	if len(s.ProductCounts) == 0 {
		pdf.CellFormat(0, lineHeight, "No products purchased yet.", "", 1, "L", false, 0, "")
	}
	for _, p := range s.ProductCounts {
		pdf.SetX(pageMargin + 7)
		pdf.CellFormat(0, lineHeight, tr(fmt.Sprintf("- %s: %d", p.Key, p.Count)), "", 1, "L", false, 0, "")
	}

	// page 3
	pdf.AddPage()
	heading("All Orders")
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Date", 50, "L"},
		{"Status", 60, "L"},
		{"Total", 40, "R"},
	}
	pdf.SetFont("Helvetica", "B", 12)
	for _, c := range cols {
		pdf.CellFormat(c.width, 8, c.title, "B", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 12)
	for _, o := range r.Orders {
		cells := []string{
			o.OrderDate.UTC().Format("2006-01-02"),
			Humanize(o.Status),
			"$" + o.TotalAmount.String(),
		}
		for i, c := range cols {
			pdf.CellFormat(c.width, 7, tr(cells[i]), "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "layout pdf")
	}
	return errors.Wrap(pdf.Output(w), "write pdf")
}

// Filename is the attachment name of a customer's report
func Filename(customerName string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '"', r == ';', r == '/', r == '\\':
			return -1
		}
		return r
	}, customerName)
	return "report-" + strings.TrimSpace(clean) + ".pdf"
}
