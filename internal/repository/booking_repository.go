package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"roomrental/internal/model"
)

// BookingRepository defines booking persistence operations.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	FindByUserAndRoom(ctx context.Context, userID, roomID uuid.UUID) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Booking, error)
	// ListApprovedForRoomForUpdate returns approved bookings of a room with a row lock.
	ListApprovedForRoomForUpdate(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error)
	// UpdateStatus moves a booking from one status to another. It reports
	// false when the booking was no longer in the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error)
	// DeleteInStatus deletes a booking only while it is in one of the given statuses.
	DeleteInStatus(ctx context.Context, id uuid.UUID, statuses ...model.BookingStatus) (bool, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo BookingRepository) error) error
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create creates a new booking record.
func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// FindByID finds a booking by ID.
func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByUserAndRoom returns the user's bookings of a room, newest first.
func (r *bookingRepository) FindByUserAndRoom(ctx context.Context, userID, roomID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Where("user_id = ? AND room_id = ?", userID, roomID).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByUser lists a buyer's bookings, newest first.
func (r *bookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListBySeller lists bookings addressed to a seller, newest first.
func (r *bookingRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) ListApprovedForRoomForUpdate(ctx context.Context, roomID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_id = ? AND status = ?", roomID, model.BookingStatusApproved).
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *bookingRepository) DeleteInStatus(ctx context.Context, id uuid.UUID, statuses ...model.BookingStatus) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND status IN ?", id, statuses).Delete(&model.Booking{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// WithTransaction executes a function within a database transaction.
func (r *bookingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo BookingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &bookingRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
