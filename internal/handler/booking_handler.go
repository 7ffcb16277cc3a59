package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"roomrental/internal/errors"
	"roomrental/internal/service"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	bookings  service.BookingService
	documents service.DocumentService
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(bookings service.BookingService, documents service.DocumentService) *BookingHandler {
	return &BookingHandler{bookings: bookings, documents: documents}
}

// BookingRequest asks for a room over a date range. Dates are YYYY-MM-DD
// or RFC 3339 and are stored in UTC.
type BookingRequest struct {
	StartDate string `json:"start_date" validate:"required" example:"2024-03-01"`
	EndDate   string `json:"end_date" validate:"required" example:"2024-03-05"`
}

// DecisionRequest approves or rejects a booking.
type DecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// CreateBooking godoc
// @Summary Book a room
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param request body BookingRequest true "Date range"
// @Success 201 {object} model.Booking
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /rooms/{id}/bookings [post]
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	roomID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req BookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), identity(c), roomID, req.StartDate, req.EndDate)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// GetBooking godoc
// @Summary Get booking by id
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} model.Booking
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.GetBooking(c.Request().Context(), identity(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, booking)
}

// CancelBooking godoc
// @Summary Cancel a pending or rejected booking
// @Description Approved bookings cannot be cancelled online; the response carries the support contact.
// @Tags bookings
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /bookings/{id} [delete]
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.bookings.CancelBooking(c.Request().Context(), identity(c), id); err != nil {
		if stderrors.Is(err, errors.ErrBookingApproved) {
			return echo.NewHTTPError(http.StatusConflict, errors.ErrorResponse{
				Error:  err.Error(),
				Code:   "BOOKING_APPROVED",
				Detail: h.bookings.SupportMessage(),
			})
		}
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DecideBooking godoc
// @Summary Approve or reject a pending booking
// @Tags seller
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body DecisionRequest true "New status"
// @Success 200 {object} model.Booking
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /seller/bookings/{id}/status [patch]
func (h *BookingHandler) DecideBooking(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req DecisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	booking, err := h.bookings.DecideBooking(c.Request().Context(), identity(c), id, req.Status)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, booking)
}

// Confirmation godoc
// @Summary Download the confirmation of an approved booking
// @Tags bookings
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {file} binary
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /bookings/{id}/confirmation.pdf [get]
func (h *BookingHandler) Confirmation(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	filename, pdf, err := h.documents.BookingConfirmation(c.Request().Context(), identity(c), id)
	if err != nil {
		return fail(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ListBuyerBookings godoc
// @Summary The buyer's bookings with their rooms
// @Tags buyer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.BookingWithRoom
// @Failure 403 {object} errors.ErrorResponse
// @Router /buyer/bookings [get]
func (h *BookingHandler) ListBuyerBookings(c echo.Context) error {
	list, err := h.bookings.ListForBuyer(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, list)
}

// ListSellerBookings godoc
// @Summary Bookings of the seller's rooms
// @Tags seller
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.SellerBooking
// @Failure 403 {object} errors.ErrorResponse
// @Router /seller/bookings [get]
func (h *BookingHandler) ListSellerBookings(c echo.Context) error {
	list, err := h.bookings.ListForSeller(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, list)
}
