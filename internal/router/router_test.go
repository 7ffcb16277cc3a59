package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrental/internal/auth"
	"roomrental/internal/errors"
	"roomrental/internal/handler"
	"roomrental/internal/model"
	"roomrental/internal/service"
)

type stubAuth struct {
	service.AuthService
	revoked map[string]bool
}

func (s *stubAuth) IsRevoked(_ context.Context, c *auth.Claims) bool {
	return s.revoked[c.ID]
}

type stubUsers struct {
	identities map[uuid.UUID]auth.Identity
}

func (s *stubUsers) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	return nil, errors.ErrUserNotFound
}

func (s *stubUsers) ResolveIdentity(_ context.Context, id uuid.UUID) (auth.Identity, error) {
	if ident, ok := s.identities[id]; ok {
		return ident, nil
	}
	return auth.Anonymous(), errors.ErrSessionInvalid
}

type testServer struct {
	e     *echo.Echo
	jwt   *auth.JWTService
	auth  *stubAuth
	users *stubUsers
}

func newTestServer() *testServer {
	ts := &testServer{
		e:     echo.New(),
		jwt:   auth.NewJWTService("test-secret"),
		auth:  &stubAuth{revoked: map[string]bool{}},
		users: &stubUsers{identities: map[uuid.UUID]auth.Identity{}},
	}
	Register(ts.e, ts.jwt, ts.auth, ts.users, Handlers{
		Auth:      handler.NewAuthHandler(nil),
		Rooms:     handler.NewRoomHandler(nil, nil),
		Bookings:  handler.NewBookingHandler(nil, nil),
		Favorites: handler.NewFavoriteHandler(nil),
		Dashboard: handler.NewDashboardHandler(nil),
	})
	return ts
}

func (ts *testServer) signIn(t *testing.T, role auth.Role) (uuid.UUID, string) {
	id := uuid.New()
	ts.users.identities[id] = auth.Identity{UserID: id, Email: "u@example.com", Name: "U", Role: role}
	token, err := ts.jwt.GenerateAccessToken(id, "u@example.com")
	require.NoError(t, err)
	return id, token
}

func (ts *testServer) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_UnknownRoute(t *testing.T) {
	ts := newTestServer()

	for _, path := range []string{"/nope", "/api/nope", "/api/seller/nope"} {
		rec := ts.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, errors.ErrorResponse{Error: "route not found", Code: "NOT_FOUND"}, decodeError(t, rec))
	}
}

func TestRouter_Healthz(t *testing.T) {
	rec := newTestServer().do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_Session(t *testing.T) {
	ts := newTestServer()
	_, buyerToken := ts.signIn(t, auth.RoleBuyer)

	t.Run("no token", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
	})

	t.Run("role comes from the users table", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/me", buyerToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Identity struct {
				Role string `json:"role"`
			} `json:"identity"`
			DashboardPath string `json:"dashboard_path"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "buyer", body.Identity.Role)
		assert.Equal(t, "/user", body.DashboardPath)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		ghost, err := ts.jwt.GenerateAccessToken(uuid.New(), "ghost@example.com")
		require.NoError(t, err)
		rec := ts.do(http.MethodGet, "/api/me", ghost)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "SESSION_INVALID", decodeError(t, rec).Code)
	})

	t.Run("refresh token is not accepted", func(t *testing.T) {
		id, _ := ts.signIn(t, auth.RoleBuyer)
		_, refresh, err := ts.jwt.GenerateRefreshToken(id, "u@example.com")
		require.NoError(t, err)
		rec := ts.do(http.MethodGet, "/api/me", refresh)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("signed out token", func(t *testing.T) {
		_, token := ts.signIn(t, auth.RoleSeller)
		claims, err := ts.jwt.ValidateToken(token)
		require.NoError(t, err)
		ts.auth.revoked[claims.ID] = true

		rec := ts.do(http.MethodGet, "/api/me", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "SESSION_INVALID", decodeError(t, rec).Code)
	})
}

func TestRouter_RoleGuards(t *testing.T) {
	ts := newTestServer()
	_, buyer := ts.signIn(t, auth.RoleBuyer)
	_, seller := ts.signIn(t, auth.RoleSeller)
	_, admin := ts.signIn(t, auth.RoleAdmin)
	roomPath := "/api/rooms/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"buyer on admin dashboard", http.MethodGet, "/api/admin/dashboard", buyer},
		{"seller on admin users", http.MethodGet, "/api/admin/users", seller},
		{"buyer creating a room", http.MethodPost, "/api/seller/rooms", buyer},
		{"admin creating a room", http.MethodPost, "/api/seller/rooms", admin},
		{"seller booking a room", http.MethodPost, roomPath + "/bookings", seller},
		{"admin booking a room", http.MethodPost, roomPath + "/bookings", admin},
		{"seller favoriting", http.MethodPost, roomPath + "/favorite", seller},
		{"buyer deciding a booking", http.MethodPatch, "/api/seller/bookings/" + uuid.NewString() + "/status", buyer},
		{"seller on buyer dashboard", http.MethodGet, "/api/buyer/dashboard", seller},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, tt.token)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
		})
	}
}

func TestJSONErrorHandler_StringMessages(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = JSONErrorHandler(e)
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad input")
	})
	e.GET("/panic-free", func(c echo.Context) error {
		return assert.AnError
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrorResponse{Error: "bad input", Code: "BAD_REQUEST"}, decodeError(t, rec))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic-free", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
}
