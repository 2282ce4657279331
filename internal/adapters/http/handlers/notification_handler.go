package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// NotificationHandler sends broadcasts
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Broadcast sends a message to residents through the configured webhook
// @Summary Broadcast notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BroadcastInput true "Message"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /notifications/broadcast [post]
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.BroadcastInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.notificationService.Broadcast(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	if !result.Delivered {
		return response.Success(c, "Broadcast recorded, no webhook configured", result)
	}
	return response.Success(c, "Broadcast sent", result)
}
