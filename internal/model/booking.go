package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusApproved BookingStatus = "approved"
	BookingStatusRejected BookingStatus = "rejected"
)

// DateLayout is the calendar-date form accepted for booking dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a booking date cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// ParseBookingStatus converts a string into a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusApproved, BookingStatusRejected:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("unknown booking status %q", s)
	}
}

// CanTransitionTo reports whether a seller may move a booking from s to next.
// Only pending bookings are decided, and a decision is final.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingStatusPending {
		return false
	}
	return next == BookingStatusApproved || next == BookingStatusRejected
}

// Cancellable reports whether the buyer may withdraw a booking in this state.
func (s BookingStatus) Cancellable() bool {
	return s == BookingStatusPending || s == BookingStatusRejected
}

// Live reports whether the booking still claims the room.
func (s BookingStatus) Live() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

// Booking is a buyer's request to rent a room for a date range.
type Booking struct {
	ID        uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	RoomID    uuid.UUID     `json:"room_id" gorm:"type:char(36);not null;index;index:idx_booking_user_room,priority:2"`
	UserID    uuid.UUID     `json:"user_id" gorm:"type:char(36);not null;index:idx_booking_user_room,priority:1"`
	SellerID  uuid.UUID     `json:"seller_id" gorm:"type:char(36);not null;index"`
	StartDate time.Time     `json:"start_date" gorm:"not null"`
	EndDate   time.Time     `json:"end_date" gorm:"not null"`
	Status    BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Overlaps reports whether the booking's date range intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}

// ParseBookingDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339
// timestamp and normalizes it to UTC.
func ParseBookingDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// FormatBookingDate renders a booking date in the form stored on the wire.
func FormatBookingDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
