package models

import "gorm.io/gorm"

type Listing struct {
	gorm.Model
	OwnerID     uint    `json:"ownerID" gorm:"not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title       string  `json:"title" gorm:"not null"`
	Description string  `json:"description" gorm:"type:text"`
	Address     string  `json:"address"`
	City        string  `json:"city" gorm:"index"`
	Country     string  `json:"country"`
	Price       float64 `json:"price" gorm:"type:numeric(10,2)"`
	Amenities   string  `json:"amenities"`
	Photo       string  `json:"photo"`

	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
