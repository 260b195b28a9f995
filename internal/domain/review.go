package domain

import "time"

// Review Model, one per (account, game)
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`                                          // Primary key
	AccountID  uint      `gorm:"not null;uniqueIndex:idx_review_account_game" json:"account_id"` // Author
	GameID     uint      `gorm:"not null;uniqueIndex:idx_review_account_game;index" json:"game_id"` // Reviewed game
	Account    *Account  `gorm:"foreignKey:AccountID;constraint:OnDelete:RESTRICT" json:"-"`     // Author relation
	Game       *Game     `gorm:"foreignKey:GameID;constraint:OnDelete:RESTRICT" json:"-"`        // Game relation
	Comment    *string   `gorm:"size:500" json:"comment,omitempty"`                            // Optional text
	Rating     int       `gorm:"not null" json:"rating"`                                       // 1..5
	ReviewedAt time.Time `gorm:"not null" json:"reviewed_at"`                                  // Creation time
}
