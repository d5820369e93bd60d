package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username      string         `json:"username" gorm:"uniqueIndex;not null"`
	Email         string         `json:"email" gorm:"uniqueIndex;not null"`
	Password      string         `json:"-"`
	SavedListings datatypes.JSON `json:"savedListings"`
	Listings      []Listing      `json:"listings,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}

// Custom JSON marshaling so SavedListings renders as an id array, never null
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		SavedListings []uint `json:"savedListings"`
		*Alias
	}{
		SavedListings: []uint{},
		Alias:         (*Alias)(u),
	}

	if u.SavedListings != nil {
		var ids []uint
		if err := json.Unmarshal(u.SavedListings, &ids); err == nil {
			aux.SavedListings = ids
		}
	}

	return json.Marshal(aux)
}
