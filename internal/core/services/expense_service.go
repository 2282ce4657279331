package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/pagination"
)

// ErrExpenseNotFound is returned for a missing or deleted expense
var ErrExpenseNotFound = domain.NewError(domain.KindNotFound, "expense not found")

var (
	securityGates  = map[string]bool{"Gate 1": true, "Gate 2": true}
	securityShifts = map[string]bool{"Day": true, "Night": true}
)

// ExpenseService manages the expense ledger
type ExpenseService struct {
	repo     repositories.ExpenseRepository
	audit    *AuditService
	exporter *ExportService
	loc      *time.Location
}

// NewExpenseService creates a new expense service
func NewExpenseService(repo repositories.ExpenseRepository, audit *AuditService, exporter *ExportService, loc *time.Location) *ExpenseService {
	return &ExpenseService{repo: repo, audit: audit, exporter: exporter, loc: loc}
}

// ExpenseInput represents create/update expense input
type ExpenseInput struct {
	Type      string                `json:"type"`
	PayeeName string                `json:"payee_name"`
	Amount    decimal.Decimal       `json:"amount"`
	Date      string                `json:"date"`
	Status    string                `json:"status"`
	Details   models.ExpenseDetails `json:"details"`
}

// ExpenseQuery filters an expense listing. Month and Year select a calendar month or year.
type ExpenseQuery struct {
	Type   string
	Status string
	Month  string
	Year   int
}

func (s *ExpenseService) validate(input *ExpenseInput) (*models.Expense, error) {
	t := domain.ExpenseType(strings.ToUpper(strings.TrimSpace(input.Type)))
	if !t.Valid() {
		return nil, domain.Validation("type must be GARBAGE, BUILDING_CLEANING or SECURITY")
	}
	payee := strings.TrimSpace(input.PayeeName)
	if payee == "" {
		return nil, domain.Validation("payee_name is required")
	}
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	date, err := parseDate(input.Date, s.loc)
	if err != nil {
		return nil, err
	}

	status := domain.ExpensePending
	if input.Status != "" {
		status = domain.ExpenseStatus(input.Status)
		if !status.Valid() {
			return nil, domain.Validation("status must be Paid or Pending")
		}
	}

	details := models.ExpenseDetails{Remarks: strings.TrimSpace(input.Details.Remarks)}
	switch t {
	case domain.ExpenseSecurity:
		if !securityGates[input.Details.GateNumber] {
			return nil, domain.Validation("gate_number must be Gate 1 or Gate 2")
		}
		if !securityShifts[input.Details.Shift] {
			return nil, domain.Validation("shift must be Day or Night")
		}
		details.GateNumber = input.Details.GateNumber
		details.Shift = input.Details.Shift
	case domain.ExpenseBuildingCleaning:
		name := strings.ToUpper(strings.TrimSpace(input.Details.BuildingName))
		if name == "" {
			return nil, domain.Validation("building_name is required for building cleaning")
		}
		details.BuildingName = name
	}

	return &models.Expense{
		Type:      string(t),
		PayeeName: payee,
		Amount:    input.Amount.Round(2),
		Date:      date,
		Status:    string(status),
		Details:   datatypes.NewJSONType(details),
	}, nil
}

func (s *ExpenseService) filter(q ExpenseQuery) (repositories.ExpenseFilter, error) {
	f := repositories.ExpenseFilter{Status: q.Status}
	if q.Type != "" {
		f.Type = strings.ToUpper(q.Type)
	}
	switch {
	case q.Month != "":
		if q.Year == 0 {
			return f, domain.Validation("year is required with month")
		}
		period, err := domain.NewPeriod(q.Month, q.Year)
		if err != nil {
			return f, err
		}
		from, to := period.Start(s.loc), period.DueAt(s.loc)
		f.From, f.To = &from, &to
	case q.Year != 0:
		from := time.Date(q.Year, time.January, 1, 0, 0, 0, 0, s.loc)
		to := from.AddDate(1, 0, 0)
		f.From, f.To = &from, &to
	}
	return f, nil
}

// List returns a page of expenses
func (s *ExpenseService) List(ctx context.Context, q ExpenseQuery, params *pagination.Params) ([]*models.Expense, int64, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := s.repo.List(ctx, f, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, domain.Internal("list expenses", err)
	}
	return list, total, nil
}

// Total sums the expenses matching q
func (s *ExpenseService) Total(ctx context.Context, q ExpenseQuery) (decimal.Decimal, error) {
	f, err := s.filter(q)
	if err != nil {
		return decimal.Zero, err
	}
	sum, err := s.repo.Sum(ctx, f)
	if err != nil {
		return decimal.Zero, domain.Internal("sum expenses", err)
	}
	return sum, nil
}

// Create records a new expense
func (s *ExpenseService) Create(ctx context.Context, actor domain.Actor, input *ExpenseInput) (*models.Expense, error) {
	e, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	e.CreatedBy = actor.UserID
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, domain.Internal("create expense", err)
	}

	s.audit.Record(ctx, actor, ActionCreateExpense, EntityExpense, idString(e.ID),
		fmt.Sprintf("%s %s %s", e.Type, e.PayeeName, e.Amount.StringFixed(2)))
	return e, nil
}

// Update replaces an expense's fields
func (s *ExpenseService) Update(ctx context.Context, actor domain.Actor, id uint, input *ExpenseInput) (*models.Expense, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrExpenseNotFound, "get expense")
	}
	e, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, domain.Internal("update expense", err)
	}

	s.audit.Record(ctx, actor, ActionUpdateExpense, EntityExpense, idString(e.ID),
		fmt.Sprintf("%s %s %s %s", e.Type, e.PayeeName, e.Amount.StringFixed(2), e.Status))
	return e, nil
}

// Delete soft deletes an expense
func (s *ExpenseService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, ErrExpenseNotFound, "delete expense")
	}
	s.audit.Record(ctx, actor, ActionDeleteExpense, EntityExpense, idString(id), "")
	return nil
}

// Export renders the expenses matching q as an XLSX workbook
func (s *ExpenseService) Export(ctx context.Context, q ExpenseQuery) ([]byte, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	list, _, err := s.repo.List(ctx, f, 0, -1)
	if err != nil {
		return nil, domain.Internal("list expenses", err)
	}
	data, err := s.exporter.ExpenseWorkbook(list)
	if err != nil {
		return nil, domain.Internal("render workbook", err)
	}
	return data, nil
}
