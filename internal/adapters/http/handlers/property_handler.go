package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// PropertyHandler serves the building registry
type PropertyHandler struct {
	propertyService *services.PropertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// ListBuildings returns every building
// @Summary List buildings
// @Tags Society
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /society/buildings [get]
func (h *PropertyHandler) ListBuildings(c *fiber.Ctx) error {
	buildings, err := h.propertyService.ListBuildings(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Buildings retrieved successfully", buildings)
}

// CreateBuilding registers a building
// @Summary Create building
// @Tags Society
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BuildingInput true "Building"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /society/buildings [post]
func (h *PropertyHandler) CreateBuilding(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.BuildingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	building, err := h.propertyService.CreateBuilding(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Building created successfully", building)
}

// UpdateBuilding changes a building's layout or facilities
// @Summary Update building
// @Tags Society
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Building ID"
// @Param body body services.BuildingInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /society/buildings/{id} [patch]
func (h *PropertyHandler) UpdateBuilding(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req services.BuildingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	building, err := h.propertyService.UpdateBuilding(c.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Building updated successfully", building)
}

// Units lists the flat identifiers of a building
// @Summary Building units
// @Tags Society
// @Produce json
// @Security BearerAuth
// @Param id path int true "Building ID"
// @Success 200 {object} response.Response
// @Router /society/buildings/{id}/units [get]
func (h *PropertyHandler) Units(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	units, err := h.propertyService.Units(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "Units retrieved successfully", units)
}

// Vacancy reports units without an approved resident
// @Summary Vacancy report
// @Tags Society
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /society/vacancy [get]
func (h *PropertyHandler) Vacancy(c *fiber.Ctx) error {
	report, err := h.propertyService.Vacancy(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, "Vacancy report", report)
}
