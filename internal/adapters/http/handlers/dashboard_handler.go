package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Get returns the dashboard for the caller's role
// @Summary Dashboard
// @Description Society overview for admin and committee, personal dues for everyone else
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	data, err := h.dashboardService.Get(c.Context(), actor)
	if err != nil {
		return err
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
