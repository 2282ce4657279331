package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"residency-api/internal/adapters/http/middleware"
	"residency-api/internal/adapters/persistence/testdb"
	"residency-api/internal/config"
	"residency-api/internal/core/domain"
	"residency-api/internal/pkg/logger"
	"residency-api/internal/pkg/password"
)

const (
	adminEmail    = "admin@residency.local"
	adminPassword = "admin123456"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t   *testing.T
	app *fiber.App
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	password.Cost = bcrypt.MinCost

	db := testdb.New(t)
	log := logger.Nop()
	cfg := &config.Config{
		AppMode:  "dev",
		Timezone: time.UTC,
		JWT: config.JWTConfig{
			Secret:           "routes-access-secret",
			RefreshSecret:    "routes-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
		Society: config.SocietyConfig{
			ApprovalPolicy: config.ApprovalAdmin,
			Penalty: domain.PenaltyPolicy{
				LateFee:          decimal.NewFromInt(100),
				DailyRatePercent: decimal.RequireFromString("0.5"),
			},
		},
		Scheduler: config.SchedulerConfig{ReminderInterval: 24 * time.Hour},
		Seed:      config.SeedConfig{AdminEmail: adminEmail, AdminPassword: adminPassword, AdminName: "Society Admin"},
	}
	require.NoError(t, config.NewSeeder(db, cfg, log).Run())

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler(log)})
	Setup(app, db, cfg, log)
	return &testServer{t: t, app: app}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(raw) > 0 && resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(s.t, json.Unmarshal(raw, &env))
	}
	return resp.StatusCode, env
}

func (s *testServer) login(email, pass string) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": pass})
	require.Equal(s.t, http.StatusOK, status, env.Error)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(s.t, data.AccessToken)
	return data.AccessToken
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["checks"].(map[string]any)["database"])
}

func TestAuthenticationRequired(t *testing.T) {
	s := newServer(t)

	status, env := s.do(http.MethodGet, "/api/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.Equal(t, "authentication required", env.Error)

	status, _ = s.do(http.MethodGet, "/api/dashboard", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegistrationGate(t *testing.T) {
	s := newServer(t)

	status, env := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ravi", "email": "ravi@example.com", "password": "secret-pass", "flat_id": "A-2-203",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var user struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &user))

	status, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ravi@example.com", "password": "secret-pass"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "account awaiting approval", env.Error)

	status, env = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ravi", "email": "ravi@example.com", "password": "secret-pass", "flat_id": "A-2-203",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email already registered", env.Error)

	adminToken := s.login(adminEmail, adminPassword)
	status, env = s.do(http.MethodPost, "/api/users/"+strconv.Itoa(int(user.ID))+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(http.MethodPost, "/api/users/"+strconv.Itoa(int(user.ID))+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status, "only PENDING users can be reviewed")

	s.login("ravi@example.com", "secret-pass")
}

func TestRoleGate(t *testing.T) {
	s := newServer(t)
	token := s.login("resident@residency.local", "resident123")

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/users", nil},
		{http.MethodGet, "/api/audit-logs", nil},
		{http.MethodPost, "/api/society/maintenance/lock", map[string]any{"month": "May", "year": 2024}},
		{http.MethodPost, "/api/society/maintenance/generate", map[string]any{"month": "May", "year": 2024, "amount": "2000"}},
		{http.MethodPost, "/api/expenses", map[string]any{"type": "GARBAGE"}},
		{http.MethodPost, "/api/funds", map[string]any{"purpose": "Diwali"}},
	} {
		status, env := s.do(tc.method, tc.path, token, tc.body)
		assert.Equal(t, http.StatusForbidden, status, tc.path)
		assert.False(t, env.Success, tc.path)
	}

	status, _ := s.do(http.MethodGet, "/api/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestMaintenanceFlow(t *testing.T) {
	s := newServer(t)
	adminToken := s.login(adminEmail, adminPassword)
	residentToken := s.login("resident@residency.local", "resident123")

	now := time.Now().UTC()
	month := now.Month().String()
	year := now.Year()

	status, env := s.do(http.MethodPost, "/api/society/maintenance/generate", adminToken, map[string]any{
		"month": month, "year": year, "amount": "2500",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	var generated struct {
		Created int64 `json:"created"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &generated))
	assert.EqualValues(t, 24*20, generated.Created)

	status, env = s.do(http.MethodGet, "/api/society/maintenance?flat_id=A-2-101", residentToken, nil)
	require.Equal(t, http.StatusOK, status)
	var records []struct {
		ID     uint   `json:"id"`
		FlatID string `json:"flat_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1, "residents only see their own flat")
	assert.Equal(t, "A-1-101", records[0].FlatID)

	payPath := "/api/society/maintenance/" + strconv.Itoa(int(records[0].ID)) + "/pay"
	status, env = s.do(http.MethodPost, payPath, residentToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Payment recorded", env.Message)

	status, env = s.do(http.MethodPost, payPath, residentToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Record already paid", env.Message)

	status, env = s.do(http.MethodPost, "/api/society/maintenance/lock", adminToken, map[string]any{"month": month, "year": year})
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(http.MethodGet, "/api/society/maintenance?flat_id=A-1-102&status=Pending", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &records))
	require.Len(t, records, 1)

	status, env = s.do(http.MethodPost, "/api/society/maintenance/"+strconv.Itoa(int(records[0].ID))+"/pay", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cycle locked", env.Error)

	status, _ = s.do(http.MethodPost, "/api/society/maintenance/999999/pay", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	req := httptest.NewRequest(http.MethodGet, "/api/society/maintenance/export?month="+month+"&year="+strconv.Itoa(year), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")
}

func TestBookingFlow(t *testing.T) {
	s := newServer(t)
	adminToken := s.login(adminEmail, adminPassword)
	residentToken := s.login("resident@residency.local", "resident123")

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	status, env := s.do(http.MethodPost, "/api/bookings", residentToken, map[string]any{
		"facility_id": "clubhouse", "date": tomorrow, "start_time": "18:00", "end_time": "20:00", "attendees": 12,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var booking struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "Pending", booking.Status)

	confirm := "/api/bookings/" + strconv.Itoa(int(booking.ID)) + "/confirm"
	status, _ = s.do(http.MethodPost, confirm, residentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(http.MethodPost, confirm, adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = s.do(http.MethodPost, "/api/bookings/"+strconv.Itoa(int(booking.ID))+"/reject", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "booking already finalized", env.Error)

	status, env = s.do(http.MethodGet, "/api/audit-logs?entity=Booking", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 2, "create and confirm are audited")
}
