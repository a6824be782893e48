package models

import "time"

type MenuItem struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId" validate:"required"`
	Name         string    `json:"name" validate:"required,max=255"`
	Description  string    `json:"description"`
	Price        float64   `json:"price" validate:"gte=0"`
	ImageURL     string    `json:"imageUrl"`
	IsAvailable  bool      `json:"isAvailable"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
