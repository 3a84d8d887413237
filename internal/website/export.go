package website

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Management Records"

var exportHeader = []string{
	"Day", "Credit", "Profit", "Gross Profit", "Service Fee", "Net Profit",
	"Start Date", "End Date", "Tasks",
}

var filenameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ExportFilename builds a download name from the website name, with
// anything outside the safe character set stripped.
func ExportFilename(w *Website) string {
	name := filenameSanitizer.ReplaceAllString(w.Name, "_")
	if name == "" {
		name = w.ID
	}
	return name + "_records.xlsx"
}

// BuildRecordWorkbook renders a website's management records into an
// xlsx workbook. The caller owns the returned file and must Close it.
func BuildRecordWorkbook(w *Website) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			f.Close()
			return nil, err
		}
	}

	for row, r := range w.Records {
		values := []interface{}{
			r.Day,
			r.Credit,
			r.Profit,
			r.GrossProfit,
			r.ServiceFee,
			r.NetProfit,
			formatDate(r.StartDate),
			formatDate(r.EndDate),
			formatTasks(r.Tasks),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTasks(tasks TaskList) string {
	if len(tasks) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tasks))
	for _, t := range tasks {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", t.Type, t.Description, t.Status))
	}
	return strings.Join(parts, "; ")
}
