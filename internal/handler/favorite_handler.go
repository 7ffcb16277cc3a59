package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roomrental/internal/service"
)

// FavoriteHandler handles favorite endpoints.
type FavoriteHandler struct {
	favorites service.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler.
func NewFavoriteHandler(favorites service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// FavoriteResponse reports the favorite state after a change.
type FavoriteResponse struct {
	Favorited bool `json:"favorited"`
}

// Toggle godoc
// @Summary Toggle a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} FavoriteResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /rooms/{id}/favorite [post]
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	roomID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	on, err := h.favorites.Toggle(c.Request().Context(), identity(c), roomID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, FavoriteResponse{Favorited: on})
}

// Add godoc
// @Summary Mark a room as favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} FavoriteResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /rooms/{id}/favorite [put]
func (h *FavoriteHandler) Add(c echo.Context) error {
	return h.set(c, true)
}

// Remove godoc
// @Summary Unmark a favorite room
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} FavoriteResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /rooms/{id}/favorite [delete]
func (h *FavoriteHandler) Remove(c echo.Context) error {
	return h.set(c, false)
}

func (h *FavoriteHandler) set(c echo.Context, favorited bool) error {
	roomID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	on, err := h.favorites.Set(c.Request().Context(), identity(c), roomID, favorited)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, FavoriteResponse{Favorited: on})
}

// List godoc
// @Summary The buyer's favorite rooms
// @Tags buyer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Room
// @Failure 403 {object} errors.ErrorResponse
// @Router /buyer/favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	rooms, err := h.favorites.ListRooms(c.Request().Context(), identity(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rooms)
}
