package models

import "time"

// RoleRestaurant is the only role the dashboard issues.
const RoleRestaurant = "restaurant"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=255"`
	Email        string    `json:"email" validate:"required,email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role" validate:"required,oneof=restaurant"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips the password hash before a user is rendered.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// Session is the authenticated principal handed to every owner-scoped call.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	User      PublicUser `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
