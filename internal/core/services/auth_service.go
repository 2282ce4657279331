package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/jwt"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/password"
)

// Auth errors
var (
	ErrInvalidCredentials = domain.NewError(domain.KindAuthentication, "invalid email or password")
	ErrAccountPending     = domain.NewError(domain.KindAuthorization, "account awaiting approval")
	ErrAccountRejected    = domain.NewError(domain.KindAuthorization, "registration was rejected")
	ErrEmailTaken         = domain.NewError(domain.KindConflict, "email already registered")
	ErrInvalidToken       = domain.NewError(domain.KindAuthentication, "invalid token")
	ErrTokenExpired       = domain.NewError(domain.KindAuthentication, "token expired")
	ErrWeakPassword       = domain.NewError(domain.KindValidation, "password must be at least 8 characters")
	ErrAdminSelfRegister  = domain.NewError(domain.KindValidation, "ADMIN accounts cannot be self-registered")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	audit            *AuditService
	cfg              *config.Config
	log              *logger.Logger
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	audit *AuditService,
	cfg *config.Config,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		audit:            audit,
		cfg:              cfg,
		log:              log.Component("auth"),
		now:              time.Now,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	FlatID        string `json:"flat_id"`
	OccupancyType string `json:"occupancy_type"`
	Phone         string `json:"phone"`
	Position      string `json:"position"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(input *RegisterInput) (domain.Role, domain.OccupancyType, error) {
	if strings.TrimSpace(input.Name) == "" {
		return "", "", domain.Validation("name is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return "", "", domain.Validation("a valid email is required")
	}
	if !password.ValidatePassword(input.Password) {
		return "", "", ErrWeakPassword
	}

	role := domain.RoleResident
	if input.Role != "" {
		r, ok := domain.ParseRole(input.Role)
		if !ok {
			return "", "", domain.Validation("unknown role: " + input.Role)
		}
		role = r
	}
	if role == domain.RoleAdmin {
		return "", "", ErrAdminSelfRegister
	}
	if role == domain.RoleResident && strings.TrimSpace(input.FlatID) == "" {
		return "", "", domain.Validation("flat_id is required for residents")
	}

	occupancy := domain.OccupancyOwner
	if input.OccupancyType != "" {
		occupancy = domain.OccupancyType(input.OccupancyType)
		if !occupancy.Valid() {
			return "", "", domain.Validation("occupancy_type must be Owner or Tenant")
		}
	}
	return role, occupancy, nil
}

// Register creates a PENDING account; it cannot log in until approved
func (s *AuthService) Register(ctx context.Context, input *RegisterInput, ip string) (*models.UserResponse, error) {
	role, occupancy, err := validateRegistration(input)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("check email", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	user := &models.User{
		Name:          strings.TrimSpace(input.Name),
		Email:         email,
		Password:      hashedPassword,
		Role:          string(role),
		Permissions:   datatypes.NewJSONType([]string{}),
		FlatID:        strings.ToUpper(strings.TrimSpace(input.FlatID)),
		OccupancyType: string(occupancy),
		Phone:         strings.TrimSpace(input.Phone),
		Position:      strings.TrimSpace(input.Position),
		Status:        string(domain.UserPending),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, domain.Internal("create user", err)
	}

	actor := user.Actor()
	actor.IPAddress = ip
	s.audit.Record(ctx, actor, ActionRegister, EntityUser, idString(user.ID), "registered as "+user.Role+" for "+user.FlatID)

	s.log.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("User registered, awaiting approval")
	return user.ToResponse(), nil
}

// Login authenticates an approved user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, domain.Internal("find user", err)
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := checkStatus(user); err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to stamp last login")
	}
	resp.User.LastLogin = &now

	s.log.Info().Uint("user_id", user.ID).Msg("User logged in")
	return resp, nil
}

func checkStatus(user *models.User) error {
	switch domain.UserStatus(user.Status) {
	case domain.UserApproved:
		return nil
	case domain.UserRejected:
		return ErrAccountRejected
	default:
		return ErrAccountPending
	}
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, domain.Internal("find refresh token", err)
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}
	if storedToken.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if err := checkStatus(user); err != nil {
		return nil, err
	}

	// rotation: the presented token is single use
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return nil, domain.Internal("revoke refresh token", err)
	}

	return s.issue(ctx, user)
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return domain.Internal("revoke refresh token", err)
	}
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return domain.Internal("revoke refresh tokens", err)
	}
	s.log.Info().Uint("user_id", userID).Msg("All sessions revoked")
	return nil
}

// Authenticate validates an access token and resolves the caller
func (s *AuthService) Authenticate(accessToken string) (domain.Actor, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, ErrTokenExpired
		}
		return domain.Actor{}, ErrInvalidToken
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Actor{}, ErrInvalidToken
	}
	return domain.Actor{
		UserID:    claims.UserID,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      role,
		FlatID:    claims.FlatID,
		Overrides: domain.ParseOverrides(claims.Permissions),
	}, nil
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound, "get user")
	}
	return user.ToResponse(), nil
}

// CleanupTokens removes expired and revoked refresh tokens
func (s *AuthService) CleanupTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, domain.Internal("cleanup refresh tokens", err)
	}
	return n, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, domain.Internal("generate tokens", err)
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, domain.Internal("store refresh token", err)
	}
	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(jwt.Identity{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		FlatID:      user.FlatID,
		Permissions: user.Permissions.Data(),
	}, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores the refresh token hash in database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	return s.refreshTokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	})
}
