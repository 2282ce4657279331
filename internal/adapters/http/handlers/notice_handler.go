package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/pagination"
	"residency-api/internal/pkg/response"
)

// NoticeHandler serves the notice board
type NoticeHandler struct {
	noticeService *services.NoticeService
}

// NewNoticeHandler creates a new notice handler
func NewNoticeHandler(noticeService *services.NoticeService) *NoticeHandler {
	return &NoticeHandler{noticeService: noticeService}
}

// List returns notices, newest first
// @Summary List notices
// @Tags Notices
// @Produce json
// @Security BearerAuth
// @Param category query string false "Urgent, General or Event"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /society/notices [get]
func (h *NoticeHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	notices, total, err := h.noticeService.List(c.Context(), c.Query("category"), params)
	if err != nil {
		return err
	}
	return response.Paginated(c, notices, params, total)
}

// Post publishes a notice
// @Summary Post notice
// @Tags Notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.NoticeInput true "Notice"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /society/notices [post]
func (h *NoticeHandler) Post(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.NoticeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	notice, err := h.noticeService.Post(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Notice posted", notice)
}

// Update edits a notice
// @Summary Update notice
// @Tags Notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Param body body services.NoticeInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /society/notices/{id} [patch]
func (h *NoticeHandler) Update(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req services.NoticeInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	notice, err := h.noticeService.Update(c.Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return response.Success(c, "Notice updated", notice)
}
