package service

import (
	"context"

	"github.com/google/uuid"

	"roomrental/internal/auth"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/model"
	"roomrental/internal/repository"
)

// FavoriteService manages a buyer's favorite rooms.
//
// Every write addresses the deterministic (user, room) key, so Set is
// idempotent and duplicates cannot exist. Two concurrent toggles from the
// same buyer may still cancel each other out.
type FavoriteService interface {
	IsFavorite(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
	Toggle(ctx context.Context, buyer auth.Identity, roomID uuid.UUID) (bool, error)
	Set(ctx context.Context, buyer auth.Identity, roomID uuid.UUID, favorited bool) (bool, error)
	ListRooms(ctx context.Context, buyer auth.Identity) ([]model.Room, error)
}

type favoriteService struct {
	favorites repository.FavoriteRepository
	rooms     repository.RoomRepository
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(favorites repository.FavoriteRepository, rooms repository.RoomRepository) FavoriteService {
	return &favoriteService{favorites: favorites, rooms: rooms}
}

func (s *favoriteService) IsFavorite(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	ok, err := s.favorites.Exists(ctx, model.FavoriteKey(userID, roomID))
	if err != nil {
		return false, storeErr(err, nil, "check favorite")
	}
	return ok, nil
}

// Toggle flips the favorite state and returns the new state.
func (s *favoriteService) Toggle(ctx context.Context, buyer auth.Identity, roomID uuid.UUID) (bool, error) {
	if !buyer.Can(auth.ActionFavorite) {
		return false, apperrors.ErrForbidden
	}
	current, err := s.IsFavorite(ctx, buyer.UserID, roomID)
	if err != nil {
		return false, err
	}
	return s.Set(ctx, buyer, roomID, !current)
}

func (s *favoriteService) Set(ctx context.Context, buyer auth.Identity, roomID uuid.UUID, favorited bool) (bool, error) {
	if !buyer.Can(auth.ActionFavorite) {
		return false, apperrors.ErrForbidden
	}

	if !favorited {
		if err := s.favorites.Delete(ctx, model.FavoriteKey(buyer.UserID, roomID)); err != nil {
			return false, storeErr(err, nil, "remove favorite")
		}
		return false, nil
	}

	if _, err := s.rooms.FindByID(ctx, roomID); err != nil {
		return false, storeErr(err, apperrors.ErrRoomNotFound, "get room")
	}
	if err := s.favorites.Insert(ctx, model.NewFavorite(buyer.UserID, roomID)); err != nil {
		return false, storeErr(err, nil, "add favorite")
	}
	return true, nil
}

// ListRooms returns the buyer's favorite rooms, newest favorite first.
// Favorites whose room was removed are skipped.
func (s *favoriteService) ListRooms(ctx context.Context, buyer auth.Identity) ([]model.Room, error) {
	if !buyer.Can(auth.ActionViewBuyerDashboard) {
		return nil, apperrors.ErrForbidden
	}
	favs, err := s.favorites.ListByUser(ctx, buyer.UserID)
	if err != nil {
		return nil, storeErr(err, nil, "list favorites")
	}

	ids := make([]uuid.UUID, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.RoomID)
	}
	byID, err := roomsByID(ctx, s.rooms, ids)
	if err != nil {
		return nil, err
	}

	rooms := make([]model.Room, 0, len(favs))
	for _, f := range favs {
		if room, ok := byID[f.RoomID]; ok {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

// roomsByID loads rooms in one batched read and indexes them by ID.
func roomsByID(ctx context.Context, repo repository.RoomRepository, ids []uuid.UUID) (map[uuid.UUID]model.Room, error) {
	rooms, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, nil, "load rooms")
	}
	byID := make(map[uuid.UUID]model.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}
	return byID, nil
}
