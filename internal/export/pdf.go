package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// PDF renders the snapshot as an A4 report and returns the document
// bytes.
func PDF(snap schedule.Snapshot) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Pagina {current} van {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, snap)
	addPDFTableHeader(m)
	for _, r := range snap.Rows {
		addPDFRow(m, r)
	}
	addPDFSummary(m, snap)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, snap schedule.Snapshot) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(snap.Info.Name, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)
	if project := snap.Meta["project"]; project != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New(project, props.Text{
						Size:  9,
						Align: align.Center,
						Color: &props.Color{Red: 80, Green: 80, Blue: 80},
					}),
				),
			),
		)
	}
	m.AddRows(row.New(4))
}

func addPDFTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}

	m.AddRows(
		row.New(8).Add(
			col.New(2).Add(text.New("Code", headerTextLeft)).WithStyle(&headerCell),
			col.New(4).Add(text.New("Omschrijving", headerTextLeft)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Hoev.", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Eenh.", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Prijs", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Totaal", headerText)).WithStyle(&headerCell),
		),
	)
}

func addPDFRow(m core.Maroto, r schedule.Row) {
	var cellStyle *props.Cell
	textSize := 7.0
	textStyle := fontstyle.Normal
	if r.Kind == domain.KindChapter {
		textStyle = fontstyle.Bold
		textSize = 8
	} else if r.Level > 0 {
		cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	}

	baseText := props.Text{Size: textSize, Style: textStyle, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	qty, unit := rowQuantity(r)
	price, total := rowAmounts(r)
	desc := indent(r.Level, r.Description)
	if r.Orphaned {
		desc += " [vervallen in BIM]"
	}

	cols := []core.Col{
		col.New(2).Add(text.New(r.Code, leftText)),
		col.New(4).Add(text.New(desc, leftText)),
		col.New(1).Add(text.New(qty, rightText)),
		col.New(1).Add(text.New(unit, baseText)),
		col.New(2).Add(text.New(price, rightText)),
		col.New(2).Add(text.New(total, rightText)),
	}
	if cellStyle != nil {
		for i := range cols {
			cols[i] = cols[i].WithStyle(cellStyle)
		}
	}
	m.AddRows(row.New(6).Add(cols...))
}

func addPDFSummary(m core.Maroto, snap schedule.Snapshot) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	valueStyle := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	for _, line := range summaryLines(snap) {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(line.Label, labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(formatMoney(line.Amount), valueStyle)).WithStyle(summaryCell),
			),
		)
	}
}
