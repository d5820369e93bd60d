package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	ListingID uint   `json:"listingID" gorm:"not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GuestID   uint   `json:"guestID" gorm:"not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rating    int    `json:"rating" gorm:"not null;check:rating >= 0"`
	Comment   string `json:"comment" gorm:"type:text"`

	Listing Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Guest   User    `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}
