package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// MeetingHandler serves society meetings
type MeetingHandler struct {
	meetingService *services.MeetingService
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *services.MeetingService) *MeetingHandler {
	return &MeetingHandler{meetingService: meetingService}
}

// List returns meetings ordered by date
// @Summary List meetings
// @Tags Meetings
// @Produce json
// @Security BearerAuth
// @Param from query string false "Earliest date, YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /meetings [get]
func (h *MeetingHandler) List(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	meetings, err := h.meetingService.List(c.Context(), actor, c.Query("from"))
	if err != nil {
		return err
	}
	return response.Success(c, "Meetings retrieved successfully", meetings)
}

// Schedule creates a meeting and notifies residents
// @Summary Schedule meeting
// @Tags Meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MeetingInput true "Meeting"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /meetings [post]
func (h *MeetingHandler) Schedule(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.MeetingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	meeting, err := h.meetingService.Schedule(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Meeting scheduled", meeting)
}

// RSVP toggles the caller's attendance
// @Summary Toggle RSVP
// @Tags Meetings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Meeting ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /meetings/{id}/rsvp [post]
func (h *MeetingHandler) RSVP(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	meeting, err := h.meetingService.ToggleRSVP(c.Context(), actor, id)
	if err != nil {
		return err
	}
	message := "RSVP withdrawn"
	if meeting.Attending {
		message = "RSVP recorded"
	}
	return response.Success(c, message, meeting)
}
