// Package report renders a recommendation for people: a Markdown summary and
// the HTML fragment the calculator page shows.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"solar-sizer/calculator"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Naira formats an amount with thousands separators and no kobo.
func Naira(v decimal.Decimal) string {
	f, _ := v.Float64()
	return "₦" + humanize.FormatFloat("#,###.", f)
}

// Payback formats the payback period to one decimal place.
func Payback(v decimal.NullDecimal) string {
	if !v.Valid {
		return "not applicable"
	}
	return v.Decimal.StringFixed(1) + " years"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func kw(v float64) string {
	return humanize.FtoaWithDigits(v, 2)
}

// Markdown writes the recommendation as a GFM document.
func Markdown(rec calculator.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Recommended system: %s\n\n", titleCase(string(rec.SystemType.Type)))
	fmt.Fprintf(&b, "%s\n\n", rec.SystemType.Rationale)
	fmt.Fprintf(&b, "Configuration: %s.\n\n", rec.SystemType.Configuration)

	b.WriteString("| Component | Specification |\n|---|---|\n")
	fmt.Fprintf(&b, "| Solar array | %s kW (%d x %s panels) |\n",
		kw(rec.Solar.TotalCapacityKW), rec.Solar.NumPanels, rec.Solar.PanelType)
	fmt.Fprintf(&b, "| Inverter | %s |\n", rec.Solar.Inverter)
	fmt.Fprintf(&b, "| Charge controller | %s |\n", rec.Solar.ChargeController)
	fmt.Fprintf(&b, "| Battery bank | %s kWh %s (%s) |\n\n",
		kw(rec.Battery.TotalCapacityKWh), rec.Battery.BatteryType, rec.Battery.Configuration)

	cb := rec.Financial.CostBreakdown
	b.WriteString("### Cost breakdown\n\n| Item | Cost |\n|---|---:|\n")
	for _, row := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"Solar panels", cb.Panels},
		{"Batteries", cb.Battery},
		{"Inverter", cb.Inverter},
		{"Charge controller", cb.ChargeController},
		{"Balance of system", cb.BOS},
		{"Installation", cb.Installation},
	} {
		fmt.Fprintf(&b, "| %s | %s |\n", row.name, Naira(row.v))
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n\n", Naira(cb.Total))

	fmt.Fprintf(&b, "Estimated monthly savings: **%s**. Payback period: **%s**.\n\n",
		Naira(rec.Financial.MonthlySavings), Payback(rec.Financial.PaybackYears))

	b.WriteString("### Installation\n\n")
	fmt.Fprintf(&b, "- Mounting: %s\n", rec.Installation.Mounting)
	fmt.Fprintf(&b, "- Estimated roof area: %d m²\n", rec.Installation.EstimatedAreaM2)
	fmt.Fprintf(&b, "- %s\n", rec.Installation.AdditionalNotes)

	if len(rec.Fallbacks) > 0 {
		b.WriteString("\n### Notes\n\n")
		for _, f := range rec.Fallbacks {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

// HTML renders the recommendation as an HTML fragment. Raw HTML in the
// input is dropped by the renderer.
func HTML(rec calculator.Recommendation) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(rec)), &buf); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return `<div class="recommendations">` + "\n" + buf.String() + "</div>\n", nil
}
