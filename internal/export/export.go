// Package export writes patient listings to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/inovacc/patientdesk/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the patients.
const SheetName = "Patients"

// column widths: ID, then one per model.Fields entry
var columnWidths = []float64{8, 16, 16, 28, 16, 8, 10, 18, 28}

// Headers returns the header row: ID followed by the field labels.
func Headers() []string {
	headers := make([]string, 0, len(model.Fields)+1)
	headers = append(headers, "ID")

	for _, f := range model.Fields {
		headers = append(headers, f.Label())
	}

	return headers
}

// WriteXLSX writes patients as an xlsx workbook with a bold, frozen header.
func WriteXLSX(w io.Writer, patients []model.Patient) (err error) {
	f := excelize.NewFile()

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	headers := Headers()

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("setting header %s: %w", cell, err)
		}

		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("styling header %s: %w", cell, err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}

		if col < len(columnWidths) {
			if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
				return fmt.Errorf("setting column width: %w", err)
			}
		}
	}

	for i, p := range patients {
		row := make([]any, 0, len(headers))
		row = append(row, p.ID)

		// every attribute stays text so zip codes keep their leading zeros
		for _, field := range model.Fields {
			row = append(row, p.Get(field))
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
