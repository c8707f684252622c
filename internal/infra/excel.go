package infra

// excel.go — Excel export of the production report using excelize.
// Layout:
//   - Two label lines (date, period)
//   - Blank spacer row
//   - Styled header row (bold, centered, filled, thin borders)
//   - Bordered data rows
//   - Column widths sized to the longest cell

import (
	"fmt"

	"bakepos/internal/dto"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Production Report"

var reportColumns = []string{"Product", "Produced", "Sold", "Stock", "Money In"}

// BuildProductionReport renders snapshot rows into a workbook. The caller owns
// the returned file and is responsible for writing or closing it.
func BuildProductionReport(date, period string, rows []dto.ProductSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	idx, err := f.NewSheet(reportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, err
	}

	// Label block: one line each for date and period
	periodLabel := "Period: single day"
	if period != "" && period != "none" {
		periodLabel = fmt.Sprintf("Period: last %s days", period)
	}
	f.SetCellValue(reportSheet, "A1", "Date: "+date)
	f.SetCellValue(reportSheet, "A2", periodLabel)
	f.SetCellStyle(reportSheet, "A1", "A2", titleStyle)

	// Header row sits below the title block and a spacer row.
	const headerRow = 4
	widths := make([]int, len(reportColumns))
	for i, name := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(reportSheet, cell, name)
		widths[i] = len(name)
	}
	last, _ := excelize.CoordinatesToCellName(len(reportColumns), headerRow)
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	f.SetCellStyle(reportSheet, first, last, headerStyle)

	for r, row := range rows {
		values := []interface{}{
			row.Name,
			row.Produced,
			row.Sold,
			row.Stock,
			row.MoneyIn.StringFixed(2),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			f.SetCellValue(reportSheet, cell, v)
			if n := len(fmt.Sprint(v)); n > widths[c] {
				widths[c] = n
			}
		}
		firstCell, _ := excelize.CoordinatesToCellName(1, headerRow+1+r)
		lastCell, _ := excelize.CoordinatesToCellName(len(values), headerRow+1+r)
		f.SetCellStyle(reportSheet, firstCell, lastCell, cellStyle)
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(reportSheet, col, col, float64(w)+4)
	}

	return f, nil
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, s := range sides {
		borders = append(borders, excelize.Border{Type: s, Style: 1, Color: "999999"})
	}
	return borders
}
