package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Username and password length bounds, exclusive on both ends.
const (
	MinFieldLength = 1
	MaxFieldLength = 31

	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
)

// User represents the users table
type User struct {
	ID           uuid.UUID
	Username     string // UNIQUE
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}
