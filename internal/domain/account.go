package domain

import "time"

// Role determines which operations an account may perform
type Role string

// Account roles
const (
	RolePlayer    Role = "Player"    // Browses, buys and reviews games
	RolePublisher Role = "Publisher" // Publishes and manages own games
	RoleAdmin     Role = "Admin"     // Full access
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RolePlayer, RolePublisher, RoleAdmin:
		return true
	}
	return false
}

// Account Model
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                           // Primary key
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`  // Unique display name
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`     // Unique login email
	PasswordHash *string   `gorm:"size:500" json:"-"`                              // Bcrypt hash, nil until credentials are set
	Role         Role      `gorm:"size:20;not null;default:Player" json:"role"`    // Player, Publisher or Admin
	CreatedAt    time.Time `json:"created_at"`                                     // Registration time
	UpdatedAt    time.Time `json:"updated_at"`                                     // Last profile change
}
