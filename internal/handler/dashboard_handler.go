package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roomrental/internal/service"
)

// DashboardHandler serves the role dashboards.
type DashboardHandler struct {
	dashboards service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboards service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Buyer godoc
// @Summary Buyer dashboard
// @Tags buyer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.BuyerDashboard
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /buyer/dashboard [get]
func (h *DashboardHandler) Buyer(c echo.Context) error {
	dash, err := h.dashboards.Buyer(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, dash)
}

// Seller godoc
// @Summary Seller dashboard
// @Tags seller
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SellerDashboard
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /seller/dashboard [get]
func (h *DashboardHandler) Seller(c echo.Context) error {
	dash, err := h.dashboards.Seller(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, dash)
}

// Admin godoc
// @Summary Admin dashboard
// @Description Totals, rounded average price, price histogram and the five newest users and rooms.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AdminDashboard
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	dash, err := h.dashboards.Admin(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, dash)
}

// Users godoc
// @Summary All users, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *DashboardHandler) Users(c echo.Context) error {
	users, err := h.dashboards.ListUsers(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, users)
}

// Rooms godoc
// @Summary All rooms, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Room
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/rooms [get]
func (h *DashboardHandler) Rooms(c echo.Context) error {
	rooms, err := h.dashboards.ListRooms(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rooms)
}
