package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/core/domain"
	"residency-api/internal/core/services"
	"residency-api/internal/pkg/pagination"
	"residency-api/internal/pkg/response"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing all users
// @Summary List all users
// @Description Get a paginated list of users, filtered by status, role or a search term
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Param role query string false "Role"
// @Param search query string false "Name or email"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	filter := repositories.UserFilter{
		Status: c.Query("status"),
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	return h.list(c, filter)
}

// ListPending lists registrations awaiting review
// @Summary List pending registrations
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/pending [get]
func (h *UserHandler) ListPending(c *fiber.Ctx) error {
	return h.list(c, repositories.UserFilter{Status: string(domain.UserPending)})
}

func (h *UserHandler) list(c *fiber.Ctx, filter repositories.UserFilter) error {
	params := pagination.GetParams(c)
	users, total, err := h.userService.ListUsers(c.Context(), filter, params)
	if err != nil {
		return err
	}
	return response.Paginated(c, users, params, total)
}

// GetUser handles getting a user by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUserByID(c.Context(), id)
	if err != nil {
		return err
	}

	return response.Success(c, "User retrieved successfully", user)
}

// UpdateUser lets an administrator change a user's role, permissions or details
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserByAdminInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req services.UpdateUserByAdminInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUserByAdmin(c.Context(), actor, id, &req)
	if err != nil {
		return err
	}

	return response.Success(c, "User updated successfully", user)
}

// Approve approves a pending registration
// @Summary Approve registration
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/approve [post]
func (h *UserHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, h.userService.Approve, "User approved")
}

// Reject rejects a pending registration
// @Summary Reject registration
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/reject [post]
func (h *UserHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, h.userService.Reject, "User rejected")
}

type reviewFunc func(ctx context.Context, actor domain.Actor, id uint) (*models.UserResponse, error)

func (h *UserHandler) review(c *fiber.Ctx, fn reviewFunc, message string) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	user, err := fn(c.Context(), actor, id)
	if err != nil {
		return err
	}

	return response.Success(c, message, user)
}

// GetProfile returns the caller's own profile
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetProfile(c.Context(), actor.UserID)
	if err != nil {
		return err
	}

	return response.Success(c, "Profile retrieved successfully", user)
}

// ChangePassword changes the caller's password
// @Summary Change password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.Context(), actor, &req); err != nil {
		return err
	}

	return response.Success(c, "Password changed successfully", nil)
}
