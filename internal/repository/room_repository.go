package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"roomrental/internal/model"
)

// RoomRepository defines room persistence operations.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Room, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Room, error)
	Search(ctx context.Context, term string, limit, offset int) ([]model.Room, error)
	ListRecent(ctx context.Context, limit int) ([]model.Room, error)
	Count(ctx context.Context) (int64, error)
	Prices(ctx context.Context) ([]decimal.Decimal, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create creates a new room.
func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// Update writes the editable fields of a room.
func (r *roomRepository) Update(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Model(room).Select("title", "description", "price", "location", "image").
		Updates(room).Error
}

// Delete removes a room together with the favorites pointing at it.
// Bookings are kept as history.
func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Room{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindByID finds a room by ID.
func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDs fetches many rooms in one query. Missing IDs are skipped.
func (r *roomRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Room, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rooms []model.Room
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListBySeller lists the rooms owned by a seller, newest first.
func (r *roomRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Room, error) {
	var rooms []model.Room
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).
		Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// Search lists rooms newest first, optionally filtered by a case-insensitive
// substring of the title or the location.
func (r *roomRepository) Search(ctx context.Context, term string, limit, offset int) ([]model.Room, error) {
	var rooms []model.Room
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if term = strings.TrimSpace(term); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", like, like)
	}
	if err := q.Limit(limit).Offset(offset).Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// ListRecent returns rooms newest first. A non-positive limit returns all.
func (r *roomRepository) ListRecent(ctx context.Context, limit int) ([]model.Room, error) {
	var rooms []model.Room
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Room{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Prices returns the price of every room.
func (r *roomRepository) Prices(ctx context.Context) ([]decimal.Decimal, error) {
	var prices []decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&model.Room{}).Pluck("price", &prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
