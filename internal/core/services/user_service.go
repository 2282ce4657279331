package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/pagination"
	"residency-api/internal/pkg/password"
)

// User service errors
var (
	ErrUserNotFound        = domain.NewError(domain.KindNotFound, "user not found")
	ErrAlreadyReviewed     = domain.NewError(domain.KindState, "registration already reviewed")
	ErrOldPasswordWrong    = domain.NewError(domain.KindValidation, "old password is incorrect")
	ErrCannotChangeOwnRole = domain.NewError(domain.KindValidation, "cannot change your own role")
	ErrAllAccessOverride   = domain.NewError(domain.KindValidation, "all_access cannot be granted as an override")
)

// UserService handles user management and registration review
type UserService struct {
	userRepo  repositories.UserRepository
	tokenRepo repositories.RefreshTokenRepository
	audit     *AuditService
	society   config.SocietyConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	tokenRepo repositories.RefreshTokenRepository,
	audit *AuditService,
	society config.SocietyConfig,
	log *logger.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		audit:     audit,
		society:   society,
		log:       log.Component("users"),
		now:       time.Now,
	}
}

// UpdateUserByAdminInput represents an administrative user update
type UpdateUserByAdminInput struct {
	Name          *string   `json:"name"`
	Role          *string   `json:"role"`
	Permissions   *[]string `json:"permissions"`
	FlatID        *string   `json:"flat_id"`
	OccupancyType *string   `json:"occupancy_type"`
	Phone         *string   `json:"phone"`
	Position      *string   `json:"position"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter, params *pagination.Params) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, domain.Internal("list users", err)
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, total, nil
}

// GetUserByID returns one user
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "get user")
	}
	return user.ToResponse(), nil
}

// CanReview reports whether actor may approve or reject registrations
func (s *UserService) CanReview(actor domain.Actor) bool {
	return domain.Allow(actor, s.society.ApproverRoles(), nil)
}

// Approve moves a PENDING registration to APPROVED
func (s *UserService) Approve(ctx context.Context, actor domain.Actor, id uint) (*models.UserResponse, error) {
	return s.review(ctx, actor, id, domain.UserApproved, ActionApproveUser)
}

// Reject moves a PENDING registration to REJECTED
func (s *UserService) Reject(ctx context.Context, actor domain.Actor, id uint) (*models.UserResponse, error) {
	return s.review(ctx, actor, id, domain.UserRejected, ActionRejectUser)
}

func (s *UserService) review(ctx context.Context, actor domain.Actor, id uint, status domain.UserStatus, action string) (*models.UserResponse, error) {
	if !s.CanReview(actor) {
		return nil, domain.ErrForbidden
	}

	changed, err := s.userRepo.Review(ctx, id, string(status), actor.UserID, s.now())
	if err != nil {
		return nil, domain.Internal("review user", err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "get user")
	}
	if !changed {
		return nil, ErrAlreadyReviewed
	}

	s.audit.Record(ctx, actor, action, EntityUser, idString(id), fmt.Sprintf("%s <%s> %s", user.Name, user.Email, strings.ToLower(string(status))))
	s.log.Info().Uint("user_id", id).Str("status", string(status)).Uint("reviewer", actor.UserID).Msg("Registration reviewed")
	return user.ToResponse(), nil
}

// UpdateUserByAdmin changes profile, role or permission overrides
func (s *UserService) UpdateUserByAdmin(ctx context.Context, actor domain.Actor, id uint, input *UpdateUserByAdminInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "get user")
	}

	var changes []string
	sessionsStale := false

	if input.Role != nil {
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return nil, domain.Validation("unknown role: " + *input.Role)
		}
		if string(role) != user.Role {
			if id == actor.UserID {
				return nil, ErrCannotChangeOwnRole
			}
			changes = append(changes, "role "+user.Role+" -> "+string(role))
			user.Role = string(role)
			sessionsStale = true
		}
	}

	if input.Permissions != nil {
		perms := make([]string, 0, len(*input.Permissions))
		for _, raw := range *input.Permissions {
			p, ok := domain.ParsePermission(raw)
			if !ok {
				return nil, domain.Validation("unknown permission: " + raw)
			}
			if p == domain.PermAllAccess {
				return nil, ErrAllAccessOverride
			}
			perms = append(perms, string(p))
		}
		user.Permissions = datatypes.NewJSONType(perms)
		changes = append(changes, "permissions ["+strings.Join(perms, ",")+"]")
		sessionsStale = true
	}

	if input.OccupancyType != nil {
		occ := domain.OccupancyType(*input.OccupancyType)
		if !occ.Valid() {
			return nil, domain.Validation("occupancy_type must be Owner or Tenant")
		}
		user.OccupancyType = string(occ)
		changes = append(changes, "occupancy "+string(occ))
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Validation("name cannot be empty")
		}
		user.Name = name
		changes = append(changes, "name")
	}
	if input.FlatID != nil {
		user.FlatID = strings.ToUpper(strings.TrimSpace(*input.FlatID))
		changes = append(changes, "flat "+user.FlatID)
		sessionsStale = true
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
		changes = append(changes, "phone")
	}
	if input.Position != nil {
		user.Position = strings.TrimSpace(*input.Position)
		changes = append(changes, "position")
	}

	if len(changes) == 0 {
		return user.ToResponse(), nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, domain.Internal("update user", err)
	}

	// tokens carry role and permissions; force a fresh login
	if sessionsStale {
		if err := s.tokenRepo.RevokeAllByUserID(ctx, id); err != nil {
			s.log.Warn().Err(err).Uint("user_id", id).Msg("Failed to revoke sessions after update")
		}
	}

	s.audit.Record(ctx, actor, ActionUpdateUser, EntityUser, idString(id), strings.Join(changes, "; "))
	return user.ToResponse(), nil
}

// GetProfile returns the caller's own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// ChangePassword changes the caller's password and signs out other sessions
func (s *UserService) ChangePassword(ctx context.Context, actor domain.Actor, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return storeErr(err, ErrUserNotFound, "get user")
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return domain.Internal("hash password", err)
	}
	user.Password = hashed

	if err := s.userRepo.Update(ctx, user); err != nil {
		return domain.Internal("update password", err)
	}
	if err := s.tokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to revoke sessions after password change")
	}

	s.audit.Record(ctx, actor, ActionChangePassword, EntityUser, idString(user.ID), "password changed")
	return nil
}
