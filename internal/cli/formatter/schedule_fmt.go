// Package formatter renders cost schedules for terminal display.
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/money"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeGap    = "   "
)

// RenderSchedule renders the document as an indented tree with
// right-aligned amounts, followed by the totals block.
func RenderSchedule(snap schedule.Snapshot) string {
	var b strings.Builder
	b.WriteString(Header(snap.Info.Name))
	b.WriteString("\n")

	type lineInfo struct {
		content string
		amount  string
	}
	lines := make([]lineInfo, 0, len(snap.Rows))
	maxContentWidth := 0

	// lastAt tracks, per ancestor level, whether that ancestor was the
	// last among its siblings, to decide pipe continuation.
	var lastAt []bool

	for _, r := range snap.Rows {
		if r.Level >= len(lastAt) {
			lastAt = append(lastAt, make([]bool, r.Level-len(lastAt)+1)...)
		}
		lastAt[r.Level] = r.IsLast

		var prefix strings.Builder
		for i := 0; i < r.Level; i++ {
			if lastAt[i] {
				prefix.WriteString(treeGap)
			} else {
				prefix.WriteString(treePipe)
			}
		}
		if r.IsLast {
			prefix.WriteString(treeCorner)
		} else {
			prefix.WriteString(treeBranch)
		}

		line := lineInfo{
			content: prefix.String() + renderRowLabel(r),
			amount:  renderRowAmount(r),
		}
		lines = append(lines, line)
		if w := lipgloss.Width(line.content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	for _, li := range lines {
		if li.amount == "" {
			b.WriteString(li.content + "\n")
			continue
		}
		pad := maxContentWidth - lipgloss.Width(li.content)
		if pad < 0 {
			pad = 0
		}
		b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.amount + "\n")
	}

	b.WriteString("\n")
	b.WriteString(renderTotals(snap))
	return b.String()
}

func renderRowLabel(r schedule.Row) string {
	label := r.Description
	if r.Code != "" {
		label = Dim(r.Code+" ") + label
	}
	switch r.Kind {
	case domain.KindChapter:
		label = Bold(label)
	case domain.KindTextLine:
		label = Dim(label)
	case domain.KindCostItem:
		if qty := renderQuantity(r); qty != "" {
			label += Dim("  " + qty)
		}
	}
	if r.CodeFlagged {
		label += " " + StyleYellow.Render("⚠ code")
	}
	if r.Orphaned {
		label += " " + StyleRed.Render("(vervallen in BIM)")
	}
	return label
}

func renderQuantity(r schedule.Row) string {
	qty := r.Quantity.String()
	if sym := r.QuantityType.UnitSymbol(); sym != "" {
		qty += " " + sym
	}
	return qty + " × " + money.Format(r.UnitPrice, "€")
}

func renderRowAmount(r schedule.Row) string {
	switch r.Kind {
	case domain.KindChapter:
		return StyleBlue.Render(money.Format(r.LineTotal, "€"))
	case domain.KindCostItem:
		return StyleFg.Render(money.Format(r.LineTotal, "€"))
	default:
		return ""
	}
}

func renderTotals(snap schedule.Snapshot) string {
	type totalLine struct {
		label  string
		amount decimal.Decimal
		style  lipgloss.Style
	}
	lines := []totalLine{{"Subtotaal", snap.Totals.Subtotal, StyleFg}}
	if !snap.Surcharges.OverheadRate.IsZero() {
		lines = append(lines, totalLine{
			fmt.Sprintf("Algemene kosten (%s%%)", snap.Surcharges.OverheadRate), snap.Totals.Overhead, StyleFg})
	}
	if !snap.Surcharges.ProfitRiskRate.IsZero() {
		lines = append(lines, totalLine{
			fmt.Sprintf("Winst en risico (%s%%)", snap.Surcharges.ProfitRiskRate), snap.Totals.ProfitRisk, StyleFg})
	}
	lines = append(lines,
		totalLine{fmt.Sprintf("BTW (%s%%)", snap.TaxRate), snap.Totals.Tax, StyleFg},
		totalLine{"Totaal incl. BTW", snap.Totals.GrandTotal, StyleBold},
	)

	maxLabel := 0
	for _, l := range lines {
		if len(l.label) > maxLabel {
			maxLabel = len(l.label)
		}
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(fmt.Sprintf("%-*s  %s\n", maxLabel, l.label, l.style.Render(money.Format(l.amount, "€"))))
	}
	return b.String()
}

// RenderScheduleList renders stored document metadata, one line each.
func RenderScheduleList(infos []domain.ScheduleInfo) string {
	if len(infos) == 0 {
		return Dim("Geen opgeslagen begrotingen.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Begrotingen"))
	b.WriteString("\n")
	for _, info := range infos {
		b.WriteString(fmt.Sprintf("%s  %s %s\n",
			Dim(shortID(info.ID)),
			Bold(info.Name),
			Dim(fmt.Sprintf("[%s, %s]", info.Type, info.Status)),
		))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
