package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"roomrental/internal/auth"
	"roomrental/internal/cache"
	apperrors "roomrental/internal/errors"
	"roomrental/internal/model"
	"roomrental/internal/repository"
)

const (
	roomCacheTTL = 5 * time.Minute

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// RoomInput holds the editable fields of a room.
type RoomInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	Image       string
}

// RoomService serves the public catalog and seller room management.
type RoomService interface {
	Search(ctx context.Context, term string, limit, offset int) ([]model.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error)
	ListBySeller(ctx context.Context, seller auth.Identity) ([]model.Room, error)
	CreateRoom(ctx context.Context, seller auth.Identity, in RoomInput) (*model.Room, error)
	UpdateRoom(ctx context.Context, seller auth.Identity, id uuid.UUID, in RoomInput) (*model.Room, error)
	DeleteRoom(ctx context.Context, seller auth.Identity, id uuid.UUID) error
}

type roomService struct {
	repo  repository.RoomRepository
	cache *cache.Client
}

// NewRoomService creates a new room service.
func NewRoomService(repo repository.RoomRepository, cache *cache.Client) RoomService {
	return &roomService{repo: repo, cache: cache}
}

func roomCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("room:%s", id.String())
}

// ClampPage applies the catalog paging defaults.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *roomService) Search(ctx context.Context, term string, limit, offset int) ([]model.Room, error) {
	limit, offset = ClampPage(limit, offset)
	rooms, err := s.repo.Search(ctx, strings.TrimSpace(term), limit, offset)
	if err != nil {
		return nil, storeErr(err, nil, "search rooms")
	}
	return rooms, nil
}

// GetRoom returns a room by ID, served from cache when possible.
func (s *roomService) GetRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	if data, _ := s.cache.Get(ctx, roomCacheKey(id)); data != nil {
		var cached model.Room
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrRoomNotFound, "get room")
	}
	if payload, err := json.Marshal(room); err == nil {
		_ = s.cache.Set(ctx, roomCacheKey(id), payload, roomCacheTTL)
	}
	return room, nil
}

func (s *roomService) ListBySeller(ctx context.Context, seller auth.Identity) ([]model.Room, error) {
	if !seller.Can(auth.ActionManageRooms) {
		return nil, apperrors.ErrForbidden
	}
	rooms, err := s.repo.ListBySeller(ctx, seller.UserID)
	if err != nil {
		return nil, storeErr(err, nil, "list seller rooms")
	}
	return rooms, nil
}

func (s *roomService) CreateRoom(ctx context.Context, seller auth.Identity, in RoomInput) (*model.Room, error) {
	if !seller.Can(auth.ActionManageRooms) {
		return nil, apperrors.ErrForbidden
	}
	if in.Price.IsNegative() {
		return nil, apperrors.ErrInvalidPrice
	}

	room := &model.Room{SellerID: seller.UserID}
	applyRoomInput(room, in)
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, storeErr(err, nil, "create room")
	}
	return room, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, seller auth.Identity, id uuid.UUID, in RoomInput) (*model.Room, error) {
	if in.Price.IsNegative() {
		return nil, apperrors.ErrInvalidPrice
	}
	room, err := s.ownedRoom(ctx, seller, id)
	if err != nil {
		return nil, err
	}

	applyRoomInput(room, in)
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, storeErr(err, apperrors.ErrRoomNotFound, "update room")
	}
	s.invalidate(ctx, id)
	return room, nil
}

// DeleteRoom removes the room and its favorites. Bookings are kept as history.
func (s *roomService) DeleteRoom(ctx context.Context, seller auth.Identity, id uuid.UUID) error {
	if _, err := s.ownedRoom(ctx, seller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, apperrors.ErrRoomNotFound, "delete room")
	}
	s.invalidate(ctx, id)
	return nil
}

// ownedRoom loads a room from the store, never the cache, and checks ownership.
func (s *roomService) ownedRoom(ctx context.Context, seller auth.Identity, id uuid.UUID) (*model.Room, error) {
	if !seller.Can(auth.ActionManageRooms) {
		return nil, apperrors.ErrForbidden
	}
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, apperrors.ErrRoomNotFound, "get room")
	}
	if room.SellerID != seller.UserID {
		return nil, apperrors.ErrNotOwner
	}
	return room, nil
}

func (s *roomService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, roomCacheKey(id)); err != nil {
		log.Printf("room cache invalidation failed for %s: %v", id, err)
	}
}

func applyRoomInput(room *model.Room, in RoomInput) {
	room.Title = strings.TrimSpace(in.Title)
	room.Description = strings.TrimSpace(in.Description)
	room.Price = in.Price.Round(2)
	room.Location = strings.TrimSpace(in.Location)
	room.Image = strings.TrimSpace(in.Image)
}
