package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/services"
	"residency-api/internal/pkg/pagination"
	"residency-api/internal/pkg/response"
)

// AuditHandler serves the audit trail
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns audit entries, newest first
// @Summary List audit logs
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param entity query string false "Entity"
// @Param action query string false "Action"
// @Param user_id query int false "Acting user"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter := repositories.AuditFilter{
		Entity: c.Query("entity"),
		Action: strings.ToUpper(c.Query("action")),
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid user_id")
		}
		filter.UserID = uint(id)
	}

	params := pagination.GetParams(c)
	entries, total, err := h.auditService.List(c.Context(), filter, params)
	if err != nil {
		return err
	}
	return response.Paginated(c, entries, params, total)
}
