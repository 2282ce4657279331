package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/domain"
	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// MaintenanceHandler serves the maintenance ledger
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// PayRequest optionally backdates a payment
type PayRequest struct {
	PaidDate *time.Time `json:"paid_date"`
}

// List returns maintenance records with their derived status and dues
// @Summary List maintenance records
// @Description Residents only see their own flat. Status filters on the derived status.
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param flat_id query string false "Flat"
// @Param month query string false "Month name or number"
// @Param year query int false "Year"
// @Param status query string false "Pending, Paid or Overdue"
// @Success 200 {object} response.Response
// @Router /society/maintenance [get]
func (h *MaintenanceHandler) List(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	year, err := queryYear(c)
	if err != nil {
		return err
	}

	records, err := h.maintenanceService.List(c.Context(), actor, services.MaintenanceQuery{
		FlatID: c.Query("flat_id"),
		Month:  c.Query("month"),
		Year:   year,
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}
	return response.Success(c, "Maintenance records retrieved successfully", records)
}

// UpdateStatus sets a record's status
// @Summary Update maintenance status
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param body body services.UpdateStatusInput true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /society/maintenance/{id} [patch]
func (h *MaintenanceHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req services.UpdateStatusInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.maintenanceService.UpdateStatus(c.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Maintenance record updated", record)
}

// Pay records a payment against a maintenance record
// @Summary Record payment
// @Description Marks the record paid with the penalty owed at the paid date. Paying twice is a no-op.
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param body body PayRequest false "Paid date"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /society/maintenance/{id}/pay [post]
func (h *MaintenanceHandler) Pay(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req PayRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}

	record, err := h.maintenanceService.RecordPayment(c.Context(), actor, id, req.PaidDate)
	if err != nil {
		return err
	}
	if record.AlreadyPaid {
		return response.Success(c, "Record already paid", record)
	}
	return response.Success(c, "Payment recorded", record)
}

// Generate creates the records of a billing cycle
// @Summary Generate maintenance cycle
// @Description Creates one Pending record per unit. Existing records are skipped.
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.GenerateInput true "Cycle"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /society/maintenance/generate [post]
func (h *MaintenanceHandler) Generate(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.GenerateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.maintenanceService.Generate(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Maintenance cycle generated", result)
}

// Lock closes a billing cycle for payments
// @Summary Lock maintenance cycle
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.LockInput true "Cycle"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /society/maintenance/lock [post]
func (h *MaintenanceHandler) Lock(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.LockInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.maintenanceService.Lock(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	if result.AlreadyLocked {
		return response.Success(c, "Cycle already locked", result)
	}
	return response.Success(c, "Cycle locked", result)
}

// ListLocks returns the locked cycles
// @Summary List locked cycles
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /society/maintenance/locks [get]
func (h *MaintenanceHandler) ListLocks(c *fiber.Ctx) error {
	locks, err := h.maintenanceService.ListLocks(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Locked cycles retrieved successfully", locks)
}

// Summary returns the totals of a cycle, the current one by default
// @Summary Cycle summary
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param month query string false "Month name or number"
// @Param year query int false "Year"
// @Success 200 {object} response.Response
// @Router /society/maintenance/summary [get]
func (h *MaintenanceHandler) Summary(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	period := h.maintenanceService.CurrentPeriod()
	if month := c.Query("month"); month != "" {
		year, err := queryYear(c)
		if err != nil {
			return err
		}
		if year == 0 {
			year = period.Year
		}
		if period, err = domain.NewPeriod(month, year); err != nil {
			return err
		}
	}

	summary, err := h.maintenanceService.Summary(c.Context(), actor, period)
	if err != nil {
		return err
	}
	return response.Success(c, "Cycle summary", summary)
}

// Export downloads a cycle as a spreadsheet
// @Summary Export maintenance cycle
// @Tags Maintenance
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param month query string true "Month name or number"
// @Param year query int true "Year"
// @Success 200 {file} file
// @Failure 400 {object} response.Response
// @Router /society/maintenance/export [get]
func (h *MaintenanceHandler) Export(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	year, err := queryYear(c)
	if err != nil {
		return err
	}

	body, filename, err := h.maintenanceService.Export(c.Context(), actor, c.Query("month"), year)
	if err != nil {
		return err
	}
	return sendFile(c, filename, xlsxContentType, body)
}
