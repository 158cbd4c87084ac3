package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexanderramin/bouwkost/internal/domain"
	"github.com/alexanderramin/bouwkost/internal/schedule"
)

// Excel renders the snapshot as an xlsx workbook and returns the file
// bytes.
func Excel(snap schedule.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(snap.Info.Name)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]
	widths := []float64{12, 48, 12, 8, 16, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	chapterStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create chapter style: %w", err)
	}
	itemStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create item style: %w", err)
	}
	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}
	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeCell(snap.Info.Name))
	f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle)

	headers := []string{"Code", "Omschrijving", "Hoeveelheid", "Eenheid", "Prijs", "Totaal"}
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%s3", columns[i]), h)
	}
	f.SetCellStyle(sheet, "A3", lastCol+"3", headerStyle)

	row := 4
	for _, r := range snap.Rows {
		rowStr := fmt.Sprintf("%d", row)
		qty, unit := rowQuantity(r)
		price, total := rowAmounts(r)

		f.SetCellValue(sheet, "A"+rowStr, sanitizeCell(r.Code))
		f.SetCellValue(sheet, "B"+rowStr, sanitizeCell(indent(r.Level, r.Description)))
		f.SetCellValue(sheet, "C"+rowStr, qty)
		f.SetCellValue(sheet, "D"+rowStr, unit)
		f.SetCellValue(sheet, "E"+rowStr, price)
		f.SetCellValue(sheet, "F"+rowStr, total)

		style := itemStyle
		if r.Kind == domain.KindChapter {
			style = chapterStyle
		}
		f.SetCellStyle(sheet, "A"+rowStr, lastCol+rowStr, style)
		row++
	}

	row++
	for _, line := range summaryLines(snap) {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "E"+rowStr, line.Label)
		f.SetCellStyle(sheet, "E"+rowStr, "E"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheet, "F"+rowStr, formatMoney(line.Amount))
		f.SetCellStyle(sheet, "F"+rowStr, "F"+rowStr, summaryValueStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName makes a schedule name usable as an xlsx sheet name: the
// characters : \ / ? * [ ] are not allowed and names cap at 31 runes.
func sheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "Begroting"
	}
	if runes := []rune(cleaned); len(runes) > 31 {
		cleaned = string(runes[:31])
	}
	return cleaned
}

// sanitizeCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
