package router

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"roomrental/internal/auth"
	"roomrental/internal/errors"
	"roomrental/internal/service"
)

func unauthorized(msg, code string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{Error: msg, Code: code})
}

// Session resolves the caller's identity from the validated access token.
// The role is read from the users table, never from the token.
func Session(authService service.AuthService, users service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized("missing or invalid access token", "UNAUTHORIZED")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || !claims.IsAccess() {
				return unauthorized("missing or invalid access token", "UNAUTHORIZED")
			}
			if authService.IsRevoked(c.Request().Context(), claims) {
				return unauthorized(errors.ErrSessionInvalid.Error(), "SESSION_INVALID")
			}
			userID, err := claims.Subject()
			if err != nil {
				return unauthorized("missing or invalid access token", "UNAUTHORIZED")
			}

			id, err := users.ResolveIdentity(c.Request().Context(), userID)
			if err != nil {
				httpErr := errors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}

// RequireAction rejects callers whose role does not permit the action.
func RequireAction(action auth.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := auth.FromContext(c.Request().Context())
			if !id.Authenticated() {
				return unauthorized("authentication required", "UNAUTHORIZED")
			}
			if !id.Can(action) {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: errors.ErrForbidden.Error(),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
