package domain

import "time"

// Coupon Model
type Coupon struct {
	ID              uint      `gorm:"primaryKey" json:"id"`                         // Primary key
	Code            string    `gorm:"size:50;uniqueIndex;not null" json:"code"`     // Code entered at checkout
	Name            string    `gorm:"size:100;not null" json:"name"`                // Display name
	DiscountPercent int       `gorm:"not null" json:"discount_percent"`             // 1..100
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`       // Cleared once, never set again
	CreatedAt       time.Time `json:"created_at"`                                   // Creation time
	ExpiresAt       time.Time `gorm:"not null;index" json:"expires_at"`             // Scheduled expiry
}

// Usable reports whether the coupon can be applied at the given instant
func (c Coupon) Usable(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiresAt)
}
