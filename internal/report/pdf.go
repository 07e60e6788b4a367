package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/MrJamesThe3rd/tillbook/internal/order"
)

// RenderPDF writes the report as a single A4 page.
func RenderPDF(w io.Writer, r *ZReport, f *Formatter) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Z-Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Session %s (%s)", r.SessionID, r.Status), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("%s - %s", r.From.Format("02-Jan-2006 15:04"), r.To.Format("02-Jan-2006 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	section := func(title string) {
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, title, "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
	}

	row := func(label, value string) {
		pdf.CellFormat(120, 7, label, "LB", 0, "L", false, 0, "")
		pdf.CellFormat(70, 7, value, "RB", 1, "R", false, 0, "")
	}

	section("Sales")
	row("Gross sales", f.Amount(r.Sales.Gross))
	row("Tax", f.Amount(r.Sales.Tax))
	row("Net sales", f.Amount(r.Sales.Net))
	row("Service charge", f.Amount(r.Sales.ServiceCharge))
	row("Delivery fees", f.Amount(r.Sales.DeliveryFees))
	row("Discounts", f.Amount(r.Sales.Discounts))
	row("Orders", f.Count(r.Sales.OrderCount))

	types := make([]order.Type, 0, len(r.OrderTypes))
	for t := range r.OrderTypes {
		types = append(types, t)
	}

	slices.Sort(types)

	for _, t := range types {
		row("  "+string(t), f.Count(r.OrderTypes[t]))
	}

	pdf.Ln(5)

	if len(r.Categories) > 0 {
		section("Categories")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(100, 7, "Category", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Revenue", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)

		for _, c := range r.Categories {
			pdf.CellFormat(100, 6, c.Category, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, f.Count(c.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, f.Amount(c.Revenue), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(5)
	}

	if len(r.Payments) > 0 {
		section("Payments")

		for _, p := range r.Payments {
			row(fmt.Sprintf("%s (%d)", p.Method, p.Count), f.Amount(p.Amount))
		}

		pdf.Ln(5)
	}

	section("Cash drawer")
	row("Opening float", f.Amount(r.CashFlow.OpeningFloat))
	row("Cash sales", f.Amount(r.CashFlow.CashSales))
	row("Rider settlements (net)", f.Amount(r.CashFlow.NetSettlements))
	row("Payouts", f.Amount(r.CashFlow.Payouts.Neg()))

	if !r.CashFlow.Adjustments.IsZero() {
		row("Adjustments", f.Amount(r.CashFlow.Adjustments))
	}

	row("Expected", f.Amount(r.CashFlow.Expected))

	if r.CashFlow.Actual != nil {
		row("Counted", f.Amount(*r.CashFlow.Actual))
	}

	if v := r.CashFlow.Variance; v != nil {
		switch {
		case v.IsNegative():
			pdf.SetFillColor(255, 200, 200)
		case v.IsPositive():
			pdf.SetFillColor(255, 240, 200)
		default:
			pdf.SetFillColor(200, 255, 200)
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 10, "Variance: "+f.Amount(*v), "1", 1, "C", true, 0, "")
	}

	return pdf.Output(w)
}
