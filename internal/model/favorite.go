package model

import (
	"time"

	"github.com/google/uuid"
)

// favoriteNamespace scopes the name-based UUIDs used as favorite keys.
var favoriteNamespace = uuid.MustParse("6f1c9d2e-4b7a-5e38-9c0d-2a1b3c4d5e6f")

// Favorite links a user to a room they saved.
// Its ID is derived from (UserID, RoomID), so a pair maps to exactly one record.
type Favorite struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_user_room_favorite"`
	RoomID    uuid.UUID `json:"room_id" gorm:"type:char(36);not null;uniqueIndex:idx_user_room_favorite;index"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteKey returns the record ID for a (user, room) pair.
func FavoriteKey(userID, roomID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(favoriteNamespace, []byte(userID.String()+":"+roomID.String()))
}

// NewFavorite builds the favorite record for a (user, room) pair.
func NewFavorite(userID, roomID uuid.UUID) *Favorite {
	return &Favorite{
		ID:     FavoriteKey(userID, roomID),
		UserID: userID,
		RoomID: roomID,
	}
}
