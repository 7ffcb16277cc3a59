package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"roomrental/internal/auth"
	"roomrental/internal/errors"
	"roomrental/internal/handler"
	"roomrental/internal/service"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth      *handler.AuthHandler
	Rooms     *handler.RoomHandler
	Bookings  *handler.BookingHandler
	Favorites *handler.FavoriteHandler
	Dashboard *handler.DashboardHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	jwtService *auth.JWTService,
	authService service.AuthService,
	userService service.UserService,
	h Handlers,
) {
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = JSONErrorHandler(e)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout, optionalJWT(jwtService))
	api.GET("/rooms", h.Rooms.ListRooms)
	api.GET("/rooms/:id", h.Rooms.GetRoom)

	// Secured routes (require JWT authentication). Guards are attached per
	// route so unknown paths under /api still reach the not-found handler.
	jwtMW := requireJWT(jwtService)
	sessionMW := Session(authService, userService)
	guard := func(action auth.Action) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{jwtMW, sessionMW, RequireAction(action)}
	}

	api.GET("/me", h.Auth.Me, guard(auth.ActionViewSession)...)
	api.GET("/rooms/:id/status", h.Rooms.RoomStatus, guard(auth.ActionViewSession)...)
	api.GET("/bookings/:id", h.Bookings.GetBooking, guard(auth.ActionViewSession)...)
	api.GET("/bookings/:id/confirmation.pdf", h.Bookings.Confirmation, guard(auth.ActionViewSession)...)

	// Buyer routes
	api.POST("/rooms/:id/favorite", h.Favorites.Toggle, guard(auth.ActionFavorite)...)
	api.PUT("/rooms/:id/favorite", h.Favorites.Add, guard(auth.ActionFavorite)...)
	api.DELETE("/rooms/:id/favorite", h.Favorites.Remove, guard(auth.ActionFavorite)...)
	api.POST("/rooms/:id/bookings", h.Bookings.CreateBooking, guard(auth.ActionBook)...)
	api.DELETE("/bookings/:id", h.Bookings.CancelBooking, guard(auth.ActionBook)...)
	api.GET("/buyer/dashboard", h.Dashboard.Buyer, guard(auth.ActionViewBuyerDashboard)...)
	api.GET("/buyer/bookings", h.Bookings.ListBuyerBookings, guard(auth.ActionViewBuyerDashboard)...)
	api.GET("/buyer/favorites", h.Favorites.List, guard(auth.ActionViewBuyerDashboard)...)

	// Seller routes
	api.GET("/seller/dashboard", h.Dashboard.Seller, guard(auth.ActionViewSellerDashboard)...)
	api.GET("/seller/rooms", h.Rooms.ListSellerRooms, guard(auth.ActionManageRooms)...)
	api.POST("/seller/rooms", h.Rooms.CreateRoom, guard(auth.ActionManageRooms)...)
	api.PUT("/seller/rooms/:id", h.Rooms.UpdateRoom, guard(auth.ActionManageRooms)...)
	api.DELETE("/seller/rooms/:id", h.Rooms.DeleteRoom, guard(auth.ActionManageRooms)...)
	api.GET("/seller/bookings", h.Bookings.ListSellerBookings, guard(auth.ActionViewSellerDashboard)...)
	api.PATCH("/seller/bookings/:id/status", h.Bookings.DecideBooking, guard(auth.ActionDecideBookings)...)

	// Admin routes (read-only)
	api.GET("/admin/dashboard", h.Dashboard.Admin, guard(auth.ActionViewAdminDashboard)...)
	api.GET("/admin/users", h.Dashboard.Users, guard(auth.ActionViewAdminDashboard)...)
	api.GET("/admin/rooms", h.Dashboard.Rooms, guard(auth.ActionViewAdminDashboard)...)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
			Error: "route not found",
			Code:  "NOT_FOUND",
		})
	})
}

func jwtConfig(jwtService *auth.JWTService) echojwt.Config {
	return echojwt.Config{
		SigningKey: jwtService.Secret(),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}
}

func requireJWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	cfg := jwtConfig(jwtService)
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing or invalid access token",
			Code:  "UNAUTHORIZED",
		})
	}
	return echojwt.WithConfig(cfg)
}

// optionalJWT parses a bearer token when present and lets the request through otherwise.
func optionalJWT(jwtService *auth.JWTService) echo.MiddlewareFunc {
	cfg := jwtConfig(jwtService)
	cfg.ContinueOnIgnoredError = true
	cfg.ErrorHandler = func(c echo.Context, err error) error {
		return nil
	}
	return echojwt.WithConfig(cfg)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
