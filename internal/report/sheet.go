package report

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	sheetNameMatrix  = "compliance-matrix"
	sheetNameServers = "servers"
)

var statusFontColors = map[Status]string{
	StatusPassed:  "28A745",
	StatusFailed:  "DC3545",
	StatusSkipped: "17A2B8",
	StatusUnknown: "DC3545",
}

// SaveMatrixSheet writes the compliance matrix and the server counters to an
// excel file.
func SaveMatrixSheet(path string, doc *ReportDocument, rows []*MatrixRow) error {
	sheet := excelize.NewFile()
	defer func() {
		if err := sheet.Close(); err != nil {
			log.Error(err)
		}
	}()

	if err := sheet.SetSheetName("Sheet1", sheetNameMatrix); err != nil {
		return err
	}
	if err := populateMatrixSheet(sheet, rows); err != nil {
		return fmt.Errorf("unable to populate sheet %s: %w", sheetNameMatrix, err)
	}

	if _, err := sheet.NewSheet(sheetNameServers); err != nil {
		return err
	}
	if err := populateServersSheet(sheet, doc); err != nil {
		return fmt.Errorf("unable to populate sheet %s: %w", sheetNameServers, err)
	}

	sheet.SetActiveSheet(0)
	return sheet.SaveAs(path)
}

func setRow(sheet *excelize.File, sheetName string, row int, values ...interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := sheet.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func populateMatrixSheet(sheet *excelize.File, rows []*MatrixRow) error {
	if err := setRow(sheet, sheetNameMatrix, 1, "Server", "Object", "Test Case", "Result", "Warning"); err != nil {
		return err
	}
	styles := make(map[Status]int, len(statusFontColors))
	for st, color := range statusFontColors {
		id, err := sheet.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: color}})
		if err != nil {
			return err
		}
		styles[st] = id
	}
	for idx, r := range rows {
		rowN := idx + 2
		if err := setRow(sheet, sheetNameMatrix, rowN, r.Server, r.Object(), r.Test, r.Result.Label(), r.Warning); err != nil {
			return err
		}
		cell := fmt.Sprintf("D%d", rowN)
		if style, ok := styles[r.Result]; ok {
			if err := sheet.SetCellStyle(sheetNameMatrix, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func populateServersSheet(sheet *excelize.File, doc *ReportDocument) error {
	header := []interface{}{"Server", "Base URL", "Total", "Passed", "Failed", "Skipped", "Warnings"}
	for _, ot := range ObjectTypes {
		header = append(header, ot.Title())
	}
	if err := setRow(sheet, sheetNameServers, 1, header...); err != nil {
		return err
	}
	for idx, s := range doc.Servers {
		values := []interface{}{s.ServerName, s.BaseURL, s.TotalTests, s.TotalPassed, s.TotalFailed, s.TotalSkipped, s.TotalWarning}
		for _, ot := range ObjectTypes {
			values = append(values, s.RouteStatus(ot).Text)
		}
		if err := setRow(sheet, sheetNameServers, idx+2, values...); err != nil {
			return err
		}
	}
	return nil
}
