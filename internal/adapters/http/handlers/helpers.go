package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/adapters/http/middleware"
	"residency-api/internal/core/domain"
)

var errInvalidID = domain.Validation("invalid id")

// actorOf returns the authenticated caller. Routes without AuthMiddleware
// must not call it.
func actorOf(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	return actor, nil
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func queryYear(c *fiber.Ctx) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation("invalid year: " + raw)
	}
	return year, nil
}

// sendFile writes an attachment with the given content type
func sendFile(c *fiber.Ctx, filename, contentType string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
