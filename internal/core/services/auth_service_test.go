package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"residency-api/internal/adapters/persistence/models"
	"residency-api/internal/adapters/persistence/repositories"
	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
)

func register(t *testing.T, f *fixture, email string) *models.UserResponse {
	t.Helper()
	u, err := f.auth.Register(context.Background(), &RegisterInput{
		Name:     "Asha Rao",
		Email:    email,
		Password: "password123",
		FlatID:   "a-1-101",
	}, "10.0.0.1")
	require.NoError(t, err)
	return u
}

func TestRegisterAndApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u := register(t, f, "Asha@Example.com")
	assert.Equal(t, "PENDING", u.Status)
	assert.Equal(t, "RESIDENT", u.Role)
	assert.Equal(t, "A-1-101", u.FlatID)
	assert.Equal(t, "asha@example.com", u.Email)

	login := &LoginInput{Email: "asha@example.com", Password: "password123"}

	_, err := f.auth.Login(ctx, login)
	require.ErrorIs(t, err, ErrAccountPending)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

	_, err = f.userSvc.Approve(ctx, admin, u.ID)
	require.NoError(t, err)

	resp, err := f.auth.Login(ctx, login)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "APPROVED", resp.User.Status)

	actor, err := f.auth.Authenticate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.UserID)
	assert.Equal(t, domain.RoleResident, actor.Role)
	assert.Equal(t, "A-1-101", actor.FlatID)

	_, err = f.userSvc.Approve(ctx, admin, u.ID)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	assert.EqualValues(t, 1, f.auditCount(t, ActionRegister))
	assert.EqualValues(t, 1, f.auditCount(t, ActionApproveUser))
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	register(t, f, "taken@example.com")

	tests := []struct {
		name  string
		input RegisterInput
		want  error
		kind  domain.ErrorKind
	}{
		{"duplicate email", RegisterInput{Name: "B", Email: "TAKEN@example.com", Password: "password123", FlatID: "A-1-102"}, ErrEmailTaken, domain.KindConflict},
		{"admin role", RegisterInput{Name: "B", Email: "b@example.com", Password: "password123", Role: "admin"}, ErrAdminSelfRegister, domain.KindValidation},
		{"short password", RegisterInput{Name: "B", Email: "b@example.com", Password: "short", FlatID: "A-1-102"}, ErrWeakPassword, domain.KindValidation},
		{"resident without flat", RegisterInput{Name: "B", Email: "b@example.com", Password: "password123"}, nil, domain.KindValidation},
		{"bad email", RegisterInput{Name: "B", Email: "not-an-email", Password: "password123", FlatID: "A-1-102"}, nil, domain.KindValidation},
		{"unknown role", RegisterInput{Name: "B", Email: "b@example.com", Password: "password123", Role: "janitor"}, nil, domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, &tt.input, "")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, tt.kind, domain.KindOf(err))
		})
	}

	t.Run("staff without flat", func(t *testing.T) {
		u, err := f.auth.Register(ctx, &RegisterInput{Name: "Guard", Email: "guard@example.com", Password: "password123", Role: "security"}, "")
		require.NoError(t, err)
		assert.Equal(t, "SECURITY", u.Role)
	})
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "ok@example.com", "password123", domain.RoleResident, "A-1-101", domain.UserApproved)
	f.seedUser(t, "no@example.com", "password123", domain.RoleResident, "A-1-102", domain.UserRejected)

	_, err := f.auth.Login(ctx, &LoginInput{Email: "ok@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &LoginInput{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, &LoginInput{Email: "no@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountRejected)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "ok@example.com", "password123", domain.RoleResident, "A-1-101", domain.UserApproved)

	first, err := f.auth.Login(ctx, &LoginInput{Email: "ok@example.com", Password: "password123"})
	require.NoError(t, err)

	second, err := f.auth.RefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// the rotated token is single use
	_, err = f.auth.RefreshToken(ctx, first.RefreshToken)
	assert.Equal(t, domain.KindAuthentication, domain.KindOf(err))

	require.NoError(t, f.auth.Logout(ctx, second.RefreshToken))
	_, err = f.auth.RefreshToken(ctx, second.RefreshToken)
	assert.Equal(t, domain.KindAuthentication, domain.KindOf(err))

	_, err = f.auth.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestReviewPolicy(t *testing.T) {
	ctx := context.Background()
	committee := domain.Actor{UserID: 5, Name: "Ravi", Role: domain.RoleCommittee}

	f := newFixture(t)
	u := register(t, f, "asha@example.com")

	_, err := f.userSvc.Approve(ctx, committee, u.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	f.userSvc.society.ApprovalPolicy = config.ApprovalAdminCommittee
	res, err := f.userSvc.Reject(ctx, committee, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", res.Status)

	_, err = f.userSvc.Approve(ctx, admin, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUserByAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.seedUser(t, "ok@example.com", "password123", domain.RoleResident, "A-1-101", domain.UserApproved)

	role := "committee"
	perms := []string{"manage_treasury"}
	res, err := f.userSvc.UpdateUserByAdmin(ctx, admin, u.ID, &UpdateUserByAdminInput{Role: &role, Permissions: &perms})
	require.NoError(t, err)
	assert.Equal(t, "COMMITTEE", res.Role)
	assert.Contains(t, res.Permissions, "manage_treasury")
	assert.Contains(t, res.Permissions, "schedule_meetings")

	bad := []string{"launch_rockets"}
	_, err = f.userSvc.UpdateUserByAdmin(ctx, admin, u.ID, &UpdateUserByAdminInput{Permissions: &bad})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	wildcard := []string{"view_audit", "all_access"}
	_, err = f.userSvc.UpdateUserByAdmin(ctx, admin, u.ID, &UpdateUserByAdminInput{Permissions: &wildcard})
	require.ErrorIs(t, err, ErrAllAccessOverride)
	stored, err := f.userSvc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Permissions, "all_access")
	assert.NotContains(t, stored.Permissions, "view_audit")

	self := domain.Actor{UserID: u.ID, Role: domain.RoleAdmin}
	demote := "RESIDENT"
	_, err = f.userSvc.UpdateUserByAdmin(ctx, self, u.ID, &UpdateUserByAdminInput{Role: &demote})
	assert.ErrorIs(t, err, ErrCannotChangeOwnRole)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.seedUser(t, "ok@example.com", "password123", domain.RoleResident, "A-1-101", domain.UserApproved)
	me := u.Actor()

	err := f.userSvc.ChangePassword(ctx, me, &ChangePasswordInput{OldPassword: "nope", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, ErrOldPasswordWrong)

	require.NoError(t, f.userSvc.ChangePassword(ctx, me, &ChangePasswordInput{OldPassword: "password123", NewPassword: "newpassword1"}))

	_, err = f.auth.Login(ctx, &LoginInput{Email: "ok@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, &LoginInput{Email: "ok@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

type failingAuditRepo struct{}

func (failingAuditRepo) Create(context.Context, *models.AuditLog) error {
	return errors.New("disk full")
}

func (failingAuditRepo) List(context.Context, repositories.AuditFilter, int, int) ([]*models.AuditLog, int64, error) {
	return nil, 0, errors.New("disk full")
}

func TestAuditIsBestEffort(t *testing.T) {
	f := newFixture(t)
	f.seedBuildings(t, 1)
	f.maintenance.audit = NewAuditService(failingAuditRepo{}, logger.Nop())

	res, err := f.maintenance.Generate(context.Background(), admin, &GenerateInput{Month: "May", Year: 2024, Amount: decimal.NewFromInt(1500)})
	require.NoError(t, err)
	assert.EqualValues(t, 20, res.Created)
}

func TestAuditRecordsActor(t *testing.T) {
	f := newFixture(t)
	actor := admin
	actor.IPAddress = "192.168.1.9"

	f.auditSvc.Record(context.Background(), actor, ActionBroadcast, EntityNotification, "", "hello")

	entries, total, err := f.audits.List(context.Background(), repositories.AuditFilter{Entity: EntityNotification}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	e := entries[0]
	assert.Equal(t, "Admin", e.UserName)
	assert.Equal(t, "192.168.1.9", e.IPAddress)
	assert.NotEmpty(t, e.EventID)
	assert.True(t, e.Timestamp.Equal(f.now))
}
