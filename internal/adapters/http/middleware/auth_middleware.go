package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/core/domain"
	"residency-api/internal/core/services"
)

const actorKey = "actor"

// AuthMiddleware resolves the caller from the access_token cookie or a
// Bearer header and stores it for the handlers.
func AuthMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try to get token from cookie first
		accessToken := c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if accessToken == "" {
			return domain.ErrUnauthenticated
		}

		actor, err := auth.Authenticate(accessToken)
		if err != nil {
			return err
		}
		actor.IPAddress = c.IP()

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// CurrentActor returns the caller resolved by AuthMiddleware
func CurrentActor(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	return actor, ok
}

// Require allows the request when the caller has one of roles, holds one
// of perms, or holds all_access.
func Require(roles []domain.Role, perms ...domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok {
			return domain.ErrUnauthenticated
		}
		if !domain.Allow(actor, roles, perms) {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}

// RequirePermission allows callers holding any of perms
func RequirePermission(perms ...domain.Permission) fiber.Handler {
	return Require(nil, perms...)
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return Require([]domain.Role{domain.RoleAdmin})
}

// AdminOrCommittee middleware allows ADMIN or COMMITTEE roles
func AdminOrCommittee() fiber.Handler {
	return Require([]domain.Role{domain.RoleAdmin, domain.RoleCommittee})
}
