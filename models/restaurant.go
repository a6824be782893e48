package models

import (
	"encoding/json"
	"time"
)

type Location struct {
	Longitude float64 `json:"longitude" validate:"longitude"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
}

type Restaurant struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId" validate:"required"`
	Name           string    `json:"name" validate:"required,max=255"`
	Address        string    `json:"address"`
	Location       Location  `json:"location"`
	Phone          string    `json:"phone"`
	CuisineType    string    `json:"cuisineType"`
	Description    string    `json:"description"`
	OpenHours      string    `json:"openHours"`
	ImageReference string    `json:"imageReference"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UnmarshalJSON also accepts the browser dashboard's "userId" field for
// records written before ownerId existed. Encoding always writes ownerId.
func (r *Restaurant) UnmarshalJSON(data []byte) error {
	type plain Restaurant
	var doc struct {
		plain
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = Restaurant(doc.plain)
	if r.OwnerID == "" {
		r.OwnerID = doc.UserID
	}
	return nil
}
