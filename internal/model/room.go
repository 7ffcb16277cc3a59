package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Room is a listing offered for rent by a seller.
type Room struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string          `json:"title" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	Location    string          `json:"location" gorm:"size:255;not null"`
	Image       string          `json:"image" gorm:"size:1024"`
	SellerID    uuid.UUID       `json:"seller_id" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Seller User `json:"-" gorm:"foreignKey:SellerID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HasSeller reports whether the room carries a usable seller reference.
func (r *Room) HasSeller() bool {
	return r != nil && r.SellerID != uuid.Nil
}
