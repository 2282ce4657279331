package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// FundHandler serves collection drives
type FundHandler struct {
	fundService *services.FundService
}

// NewFundHandler creates a new fund handler
func NewFundHandler(fundService *services.FundService) *FundHandler {
	return &FundHandler{fundService: fundService}
}

// List returns every fund
// @Summary List funds
// @Tags Funds
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /funds [get]
func (h *FundHandler) List(c *fiber.Ctx) error {
	funds, err := h.fundService.List(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Funds retrieved successfully", funds)
}

// Get returns a fund with its contributions
// @Summary Get fund
// @Tags Funds
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fund ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /funds/{id} [get]
func (h *FundHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	fund, contributions, err := h.fundService.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Fund retrieved successfully", fiber.Map{
		"fund":          fund,
		"contributions": contributions,
	})
}

// Create opens a collection drive
// @Summary Create fund
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.FundInput true "Fund"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /funds [post]
func (h *FundHandler) Create(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.FundInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fund, err := h.fundService.Create(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Fund created successfully", fund)
}

// Contribute adds money to a fund
// @Summary Contribute to fund
// @Tags Funds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fund ID"
// @Param body body services.ContributionInput true "Contribution"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /funds/{id}/contributions [post]
func (h *FundHandler) Contribute(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req services.ContributionInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fund, err := h.fundService.Contribute(c.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Contribution recorded", fund)
}
