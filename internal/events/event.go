package events

import (
	"time"

	"github.com/google/uuid"

	"roomrental/internal/model"
)

// Action names a booking lifecycle change.
type Action string

const (
	ActionCreated   Action = "created"
	ActionApproved  Action = "approved"
	ActionRejected  Action = "rejected"
	ActionCancelled Action = "cancelled"
)

// BookingEvent is published whenever a booking changes state.
type BookingEvent struct {
	Action     Action              `json:"action"`
	BookingID  uuid.UUID           `json:"booking_id"`
	RoomID     uuid.UUID           `json:"room_id"`
	UserID     uuid.UUID           `json:"user_id"`
	SellerID   uuid.UUID           `json:"seller_id"`
	Status     model.BookingStatus `json:"status"`
	StartDate  time.Time           `json:"start_date"`
	EndDate    time.Time           `json:"end_date"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewBookingEvent describes the booking after the given action.
func NewBookingEvent(action Action, b *model.Booking) BookingEvent {
	return BookingEvent{
		Action:     action,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		UserID:     b.UserID,
		SellerID:   b.SellerID,
		Status:     b.Status,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		OccurredAt: time.Now().UTC(),
	}
}
