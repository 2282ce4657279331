package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/core/domain"
)

const xlsxDate = "2006-01-02"

// ExportService renders ledgers as XLSX workbooks
type ExportService struct {
	loc *time.Location
}

// NewExportService creates a new export service
func NewExportService(loc *time.Location) *ExportService {
	return &ExportService{loc: loc}
}

type sheetColumn struct {
	title string
	width float64
}

// writeSheet fills a fresh workbook's single sheet with a header row and rows
func (s *ExportService) writeSheet(name string, columns []sheetColumn, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(name)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(name, cell, col.title); err != nil {
			return nil, err
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(name, colName, colName, col.width); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
		return nil, err
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MaintenanceWorkbook renders one period's maintenance ledger
func (s *ExportService) MaintenanceWorkbook(period domain.Period, records []*models.MaintenanceResponse) ([]byte, error) {
	columns := []sheetColumn{
		{"Flat", 10}, {"Occupancy", 11}, {"Amount", 12}, {"Status", 10},
		{"Days Late", 10}, {"Penalty", 12}, {"Total Due", 12}, {"Paid On", 12}, {"Penalty Paid", 13},
	}
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		paidOn := ""
		if r.PaidDate != nil {
			paidOn = r.PaidDate.In(s.loc).Format(xlsxDate)
		}
		rows = append(rows, []any{
			r.FlatID,
			r.OccupancyType,
			r.Amount.InexactFloat64(),
			r.Status,
			r.DaysLate,
			r.Penalty.InexactFloat64(),
			r.Total.InexactFloat64(),
			paidOn,
			r.PenaltyPaid.InexactFloat64(),
		})
	}
	return s.writeSheet(fmt.Sprintf("%s %d", period.Label(), period.Year), columns, rows)
}

// ExpenseWorkbook renders a list of expenses
func (s *ExportService) ExpenseWorkbook(expenses []*models.Expense) ([]byte, error) {
	columns := []sheetColumn{
		{"Date", 12}, {"Type", 18}, {"Payee", 24}, {"Amount", 12}, {"Status", 10},
		{"Building", 10}, {"Gate", 8}, {"Shift", 8}, {"Remarks", 30},
	}
	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		d := e.Details.Data()
		rows = append(rows, []any{
			e.Date.In(s.loc).Format(xlsxDate),
			e.Type,
			e.PayeeName,
			e.Amount.InexactFloat64(),
			e.Status,
			d.BuildingName,
			d.GateNumber,
			d.Shift,
			d.Remarks,
		})
	}
	return s.writeSheet("Expenses", columns, rows)
}
