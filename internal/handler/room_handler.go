package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"roomrental/internal/service"
)

// RoomHandler serves the catalog and seller room management.
type RoomHandler struct {
	rooms    service.RoomService
	bookings service.BookingService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(rooms service.RoomService, bookings service.BookingService) *RoomHandler {
	return &RoomHandler{rooms: rooms, bookings: bookings}
}

// RoomRequest is the body for creating or editing a room.
type RoomRequest struct {
	Title       string           `json:"title" validate:"required,min=3"`
	Description string           `json:"description" validate:"required,min=10"`
	Price       *decimal.Decimal `json:"price" validate:"required" swaggertype:"string" example:"4500.00"`
	Location    string           `json:"location" validate:"required,min=3"`
	Image       string           `json:"image" validate:"required,url"`
}

func (r RoomRequest) input() service.RoomInput {
	return service.RoomInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       *r.Price,
		Location:    r.Location,
		Image:       r.Image,
	}
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// ListRooms godoc
// @Summary List rooms
// @Description Newest first. q matches title or location, case-insensitively.
// @Tags rooms
// @Produce json
// @Param q query string false "Search term"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} model.Room
// @Failure 500 {object} errors.ErrorResponse
// @Router /rooms [get]
func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.rooms.Search(c.Request().Context(), c.QueryParam("q"), queryInt(c, "limit"), queryInt(c, "offset"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// GetRoom godoc
// @Summary Get room by id
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} model.Room
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /rooms/{id} [get]
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	room, err := h.rooms.GetRoom(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, room)
}

// RoomStatus godoc
// @Summary Caller's status for a room
// @Description Favorite flag and the caller's most recent booking of the room.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} service.RoomStatus
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /rooms/{id}/status [get]
func (h *RoomHandler) RoomStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	status, err := h.bookings.RoomStatus(c.Request().Context(), identity(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, status)
}

// ListSellerRooms godoc
// @Summary List the seller's rooms
// @Tags seller
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Room
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /seller/rooms [get]
func (h *RoomHandler) ListSellerRooms(c echo.Context) error {
	rooms, err := h.rooms.ListBySeller(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// CreateRoom godoc
// @Summary Create a room
// @Tags seller
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RoomRequest true "Room data"
// @Success 201 {object} model.Room
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /seller/rooms [post]
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req RoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.rooms.CreateRoom(c.Request().Context(), identity(c), req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom godoc
// @Summary Edit one of the seller's rooms
// @Tags seller
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param request body RoomRequest true "Room data"
// @Success 200 {object} model.Room
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /seller/rooms/{id} [put]
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req RoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	room, err := h.rooms.UpdateRoom(c.Request().Context(), identity(c), id, req.input())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary Delete one of the seller's rooms
// @Description Also removes the room from every favorites list. Bookings are kept.
// @Tags seller
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /seller/rooms/{id} [delete]
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.rooms.DeleteRoom(c.Request().Context(), identity(c), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
