package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/monitor"
	"paper-system/pkg/utils"
)

type fakeAuthenticator struct {
	principals map[string]*authz.Principal
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*authz.Principal, error) {
	p, ok := f.principals[token]
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	return p, nil
}

type fakeMaintenance bool

func (f fakeMaintenance) MaintenanceEnabled(context.Context) bool { return bool(f) }

func newAuth() *AuthMiddleware {
	return NewAuthMiddleware(&fakeAuthenticator{principals: map[string]*authz.Principal{
		"admin-token": {ID: 1, Role: authz.RoleAdmin},
		"user-token":  {ID: 2, Role: authz.RoleUser},
	}}, zap.NewNop())
}

func serve(h echo.HandlerFunc, token string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func ok(c echo.Context) error {
	p, err := utils.PrincipalFromCtx(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": p.ID, "token": RawTokenFromCtx(c.Request().Context())})
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, apperrors.ErrEmptyAuthHeader)
	_, err = BearerToken("Token abc")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAuthHeader)
	_, err = BearerToken("Bearer a b")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAuthHeader)
}

func TestAuth(t *testing.T) {
	m := newAuth()

	rec := serve(m.Auth(ok), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeUnauthenticated)

	rec = serve(m.Auth(ok), "unknown")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(m.Auth(ok), "user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"token":"user-token"}`, rec.Body.String())
}

func TestAuthQuery(t *testing.T) {
	m := newAuth()
	e := echo.New()

	rec := httptest.NewRecorder()
	_ = m.AuthQuery(ok)(e.NewContext(httptest.NewRequest(http.MethodGet, "/ws", nil), rec))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	_ = m.AuthQuery(ok)(e.NewContext(httptest.NewRequest(http.MethodGet, "/ws?token=admin-token", nil), rec))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"token":"admin-token"}`, rec.Body.String())
}

func TestRequirePermission(t *testing.T) {
	m := newAuth()
	h := m.Auth(m.RequirePermission(authz.ResourceSystem, authz.ActionUpdate)(ok))

	rec := serve(h, "user-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeForbidden)

	rec = serve(h, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMaintenance(t *testing.T) {
	m := newAuth()
	h := m.Auth(Maintenance(fakeMaintenance(true), zap.NewNop())(ok))

	rec := serve(h, "user-token")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeMaintenance)

	rec = serve(h, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(m.Auth(Maintenance(fakeMaintenance(false), zap.NewNop())(ok)), "user-token")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLoggerFeedsMonitor(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mon := monitor.New(func() time.Time { return now })
	m := newAuth()

	h := RequestLogger(zap.NewNop(), mon)(m.Auth(ok))
	serve(h, "user-token")
	serve(h, "")

	failing := RequestLogger(zap.NewNop(), mon)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError)
	})
	rec := serve(failing, "")
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	snap := mon.Snapshot()
	assert.Equal(t, uint64(3), snap.DailyRequests)
	assert.Equal(t, uint64(1), snap.DailyErrors)
	assert.Equal(t, 1, snap.OnlineUsers)
}
