// Package report renders task groups as spreadsheets.
package report

import (
	"fmt"
	"io"
	"strings"

	"delegation-api/internal/assembler"
	"delegation-api/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the task rows.
const SheetName = "Tasks"

var headers = []string{
	"Group", "UUID", "Month", "Task", "Assigner", "Assignee", "Status",
	"Progress", "Initial deadline", "Current deadline", "End date", "Executors",
}

// WritePlanWorkbook writes one row per task, grouped in the order given, as xlsx to w.
func WritePlanWorkbook(groups []assembler.TaskGroup, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "D", "D", 30); err != nil {
		return err
	}

	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	if err != nil {
		return err
	}

	row := 2
	for _, g := range groups {
		for _, t := range g.Tasks {
			values := []any{
				g.Name,
				g.UUID,
				t.Month,
				t.Name,
				unitName(t.Assigner),
				unitName(t.Assignee),
				string(t.Status),
				t.Progress,
				t.InitialDeadline,
				t.CurrentDeadline,
				t.EndDate,
				executorNames(t),
			}
			for i, v := range values {
				cell, err := excelize.CoordinatesToCellName(i+1, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(SheetName, cell, v); err != nil {
					return err
				}
			}
			progressCell := fmt.Sprintf("H%d", row)
			if err := f.SetCellStyle(SheetName, progressCell, progressCell, percent); err != nil {
				return err
			}
			row++
		}
	}

	return f.Write(w)
}

func unitName(u *models.UnitSummary) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func executorNames(t assembler.TaskView) string {
	names := make([]string, 0, len(t.Executors))
	for _, e := range t.Executors {
		names = append(names, e.Name)
	}
	return strings.Join(names, ", ")
}
