package handlers

import (
	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/services"
	"residency-api/internal/pkg/response"
)

// BookingHandler serves amenity bookings
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// List returns the bookings visible to the caller
// @Summary List bookings
// @Description Admin and committee see every booking. Others see their own plus public confirmed ones.
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Pending, Confirmed or Rejected"
// @Param date query string false "YYYY-MM-DD"
// @Param facility query string false "Facility"
// @Success 200 {object} response.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookingService.List(c.Context(), actor, services.BookingQuery{
		Status:   c.Query("status"),
		Date:     c.Query("date"),
		Facility: c.Query("facility"),
	})
	if err != nil {
		return err
	}
	return response.Success(c, "Bookings retrieved successfully", bookings)
}

// Create requests an amenity booking
// @Summary Create booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BookingInput true "Booking"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.BookingInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	booking, err := h.bookingService.Create(c.Context(), actor, &req)
	if err != nil {
		return err
	}
	return response.Created(c, "Booking requested", booking)
}

// Confirm approves a pending booking
// @Summary Confirm booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	booking, err := h.bookingService.Confirm(c.Context(), actor, id)
	if err != nil {
		return err
	}
	return response.Success(c, "Booking confirmed", booking)
}

// Reject declines a pending booking
// @Summary Reject booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /bookings/{id}/reject [post]
func (h *BookingHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	booking, err := h.bookingService.Reject(c.Context(), actor, id)
	if err != nil {
		return err
	}
	return response.Success(c, "Booking rejected", booking)
}
