package models

import (
	"time"

	"gorm.io/gorm"
)

type Booking struct {
	gorm.Model
	ListingID uint      `json:"listingID" gorm:"not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GuestID   uint      `json:"guestID" gorm:"not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	StartDate time.Time `json:"startDate" gorm:"type:date;not null"`
	EndDate   time.Time `json:"endDate" gorm:"type:date;not null"`
	Status    string    `json:"status" gorm:"default:pending"` // pending, confirmed, cancelled, completed

	Listing Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Guest   User    `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}
