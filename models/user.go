package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a complainant account. Authentication itself is handled
// outside this service; users exist here as the ownership spine for cases.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
