package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact currency arithmetic
)

// Game Model
type Game struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                                                      // Primary key
	Title       string          `gorm:"size:100;not null" json:"title"`                                            // Display title
	Description string          `gorm:"size:1000;not null" json:"description"`                                     // Store page text
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`                                  // Current list price
	Genre       string          `gorm:"size:100;not null;index" json:"genre"`                                      // Genre, matched case-insensitively
	PublisherID uint            `gorm:"not null;index" json:"publisher_id"`                                        // Owning publisher account
	Publisher   *Account        `gorm:"foreignKey:PublisherID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"` // Publisher relation
	ReleaseDate time.Time       `gorm:"not null" json:"release_date"`                                              // Release date
	ImageURL    string          `gorm:"size:500" json:"image_url"`                                                 // Cover image
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
