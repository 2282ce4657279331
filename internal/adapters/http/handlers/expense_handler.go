package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/pagination"
	"residency-api/internal/pkg/response"
)

// ExpenseHandler serves the expense ledger
type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func expenseQuery(c *fiber.Ctx) (services.ExpenseQuery, error) {
	year, err := queryYear(c)
	if err != nil {
		return services.ExpenseQuery{}, err
	}
	return services.ExpenseQuery{
		Type:   strings.ToUpper(c.Query("type")),
		Status: c.Query("status"),
		Month:  c.Query("month"),
		Year:   year,
	}, nil
}

// List returns one page of expenses with the filtered total
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param type query string false "GARBAGE, BUILDING_CLEANING or SECURITY"
// @Param status query string false "Paid or Pending"
// @Param month query string false "Month, requires year"
// @Param year query int false "Year"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	q, err := expenseQuery(c)
	if err != nil {
		return err
	}
	params := pagination.GetParams(c)

	expenses, total, err := h.expenseService.List(c.Context(), q, params)
	if err != nil {
		return err
	}
	amount, err := h.expenseService.Total(c.Context(), q)
	if err != nil {
		return err
	}

	return c.JSON(response.Response{
		Success: true,
		Data: fiber.Map{
			"expenses":     expenses,
			"total_amount": amount,
		},
		Meta: pagination.GetMeta(params, total),
	})
}

// Create records an expense
// @Summary Create expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ExpenseInput true "Expense"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.ExpenseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	expense, err := h.expenseService.Create(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Expense created successfully", expense)
}

// Update replaces an expense
// @Summary Update expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param body body services.ExpenseInput true "Expense"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /expenses/{id} [patch]
func (h *ExpenseHandler) Update(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req services.ExpenseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	expense, err := h.expenseService.Update(c.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Expense updated successfully", expense)
}

// Delete removes an expense
// @Summary Delete expense
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.expenseService.Delete(c.Context(), actor, id); err != nil {
		return err
	}
	return response.Success(c, "Expense deleted successfully", nil)
}

// Export downloads the filtered expenses as a spreadsheet
// @Summary Export expenses
// @Tags Expenses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /expenses/export [get]
func (h *ExpenseHandler) Export(c *fiber.Ctx) error {
	q, err := expenseQuery(c)
	if err != nil {
		return err
	}

	body, err := h.expenseService.Export(c.Context(), q)
	if err != nil {
		return err
	}
	return sendFile(c, "expenses.xlsx", xlsxContentType, body)
}
