package domain

import "time"

// User models an account holder. SecretHash is never serialized outward.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	SecretHash string    `json:"-"`
	RoleID     int64     `json:"role_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
