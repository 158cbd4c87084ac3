// Package export renders a schedule snapshot to spreadsheet and PDF
// form. It consumes read-only snapshots only; nothing here touches the
// document.
package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/money"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

const currencySymbol = "€"

type summaryLine struct {
	Label  string
	Amount decimal.Decimal
}

// summaryLines builds the totals block shown under the table. Surcharge
// lines appear only when their rate is set.
func summaryLines(snap schedule.Snapshot) []summaryLine {
	lines := []summaryLine{{Label: "Subtotaal", Amount: snap.Totals.Subtotal}}
	if !snap.Surcharges.OverheadRate.IsZero() {
		lines = append(lines, summaryLine{
			Label:  "Algemene kosten (" + snap.Surcharges.OverheadRate.String() + "%)",
			Amount: snap.Totals.Overhead,
		})
	}
	if !snap.Surcharges.ProfitRiskRate.IsZero() {
		lines = append(lines, summaryLine{
			Label:  "Winst en risico (" + snap.Surcharges.ProfitRiskRate.String() + "%)",
			Amount: snap.Totals.ProfitRisk,
		})
	}
	lines = append(lines,
		summaryLine{Label: "BTW (" + snap.TaxRate.String() + "%)", Amount: snap.Totals.Tax},
		summaryLine{Label: "Totaal incl. BTW", Amount: snap.Totals.GrandTotal},
	)
	return lines
}

func formatMoney(d decimal.Decimal) string {
	return money.Format(d, currencySymbol)
}

// formatQty renders whole quantities without decimals and fractional
// ones with two.
func formatQty(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(2)
}

func indent(level int, s string) string {
	return strings.Repeat("  ", level) + s
}

// rowQuantity returns the quantity and unit columns for a row; both are
// empty for chapters and text lines.
func rowQuantity(r schedule.Row) (qty, unit string) {
	if r.Kind != domain.KindCostItem {
		return "", ""
	}
	return formatQty(r.Quantity), r.QuantityType.UnitSymbol()
}

// rowAmounts returns the price and total columns for a row. Chapters
// show their aggregated total only; text lines show neither.
func rowAmounts(r schedule.Row) (price, total string) {
	switch r.Kind {
	case domain.KindCostItem:
		return formatMoney(r.UnitPrice), formatMoney(r.LineTotal)
	case domain.KindChapter:
		return "", formatMoney(r.LineTotal)
	default:
		return "", ""
	}
}
