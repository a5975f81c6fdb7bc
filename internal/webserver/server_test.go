package webserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyorbit/toyorbit/config"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
)

func testConfig() *config.AppConfig {
	cfg := *config.DefaultAppConfig
	cfg.Auth.JwtSecret = "test-secret"
	cfg.RateLimit.Enabled = false
	return &cfg
}

func do(t *testing.T, s *AdminServer, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func newTestServer(t *testing.T) *AdminServer {
	s := NewAdminServer(testConfig(), nil)
	s.ApiGET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"user": CurrentUser(c).Username})
	})
	s.ApiDELETE("/things/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, RequireRole(domain.RoleAdmin))
	s.ApiPublicPOST("/open", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"open": true})
	})
	s.ApiGET("/boom", func(c echo.Context) error {
		return errors.New("db password is hunter2")
	})
	s.ApiGET("/missing", func(c echo.Context) error {
		return apperr.NotFound("Widget not found")
	})
	return s
}

func TestTokenFlow(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/ping", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, decodeError(t, rec).Status)

	rec = do(t, s, http.MethodGet, "/api/ping", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	manager, err := IssueToken("test-secret", time.Hour, "u1", "mia", domain.RoleManager)
	require.NoError(t, err)
	rec = do(t, s, http.MethodGet, "/api/ping", manager, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mia"`)

	rec = do(t, s, http.MethodDelete, "/api/things/1", manager, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin, err := IssueToken("test-secret", time.Hour, "u2", "root", domain.RoleAdmin)
	require.NoError(t, err)
	rec = do(t, s, http.MethodDelete, "/api/things/1", admin, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	expired, err := IssueToken("test-secret", -time.Minute, "u2", "root", domain.RoleAdmin)
	require.NoError(t, err)
	rec = do(t, s, http.MethodGet, "/api/ping", expired, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := IssueToken("other-secret", time.Hour, "u2", "root", domain.RoleAdmin)
	require.NoError(t, err)
	rec = do(t, s, http.MethodGet, "/api/ping", forged, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicRoute(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/open", "", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	token, err := IssueToken("test-secret", time.Hour, "u1", "mia", domain.RoleManager)
	require.NoError(t, err)

	rec := do(t, s, http.MethodGet, "/api/boom", token, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "Internal server error", detail.Message)
	assert.NotContains(t, rec.Body.String(), "hunter2")

	rec = do(t, s, http.MethodGet, "/api/missing", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorDetail{Message: "Widget not found", Status: http.StatusNotFound}, decodeError(t, rec))
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(time.Minute, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type moneyPayload struct {
	Name   string `json:"name" validate:"required"`
	Amount string `json:"amount" validate:"required,money"`
	Status string `json:"status" validate:"omitempty,oneof=pending shipped"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&moneyPayload{Name: "a", Amount: "20.00"}))

	err := v.Validate(&moneyPayload{Amount: "20.001", Status: "lost"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
	msg := apperr.Public(err)
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "amount must be an amount with at most two decimals")
	assert.Contains(t, msg, "status must be one of pending shipped")
}

// the prometheus collectors live in the default registry, so only one server
// per test binary may enable metrics
func TestMetricsEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Web.Metrics = true
	s := NewAdminServer(cfg, nil)

	do(t, s, http.MethodGet, "/health", "", "")
	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "toyorbit_requests_total")
}
