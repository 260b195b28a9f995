package domain

import "time"

// CartEntry Model, keyed by (account, game) so an account holds at most one row per game
type CartEntry struct {
	AccountID uint      `gorm:"primaryKey;autoIncrement:false" json:"account_id"`                  // Owning account
	GameID    uint      `gorm:"primaryKey;autoIncrement:false" json:"game_id"`                     // Game in the cart
	Quantity  int       `gorm:"not null" json:"quantity"`                                          // Always >= 1
	Account   *Account  `gorm:"foreignKey:AccountID;constraint:OnDelete:RESTRICT" json:"-"`        // Owner relation
	Game      *Game     `gorm:"foreignKey:GameID;constraint:OnDelete:RESTRICT" json:"game,omitempty"` // Game relation
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
