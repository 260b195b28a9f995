package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact currency arithmetic
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

// Order statuses. Any status may move to any other.
const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
	OrderFailed    OrderStatus = "Failed"
	OrderRefunded  OrderStatus = "Refunded"
	OrderCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderFailed, OrderRefunded, OrderCancelled:
		return true
	}
	return false
}

// Order Model. Immutable after creation except for Status.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`                                      // Primary key
	AccountID       uint            `gorm:"not null;index" json:"account_id"`                          // Purchaser
	Account         *Account        `gorm:"foreignKey:AccountID;constraint:OnDelete:RESTRICT" json:"-"` // Purchaser relation
	Lines           []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines"` // Purchased items
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"subtotal"`               // Sum of line price * quantity
	CouponCode      *string         `gorm:"size:50" json:"coupon_code,omitempty"`                      // Coupon applied at checkout
	DiscountPercent int             `gorm:"not null;default:0" json:"discount_percent"`                // Discount taken from the coupon
	Total           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`                  // Amount charged
	Status          OrderStatus     `gorm:"size:20;not null" json:"status"`                            // Lifecycle status
	OrderedAt       time.Time       `gorm:"not null;index" json:"ordered_at"`                          // Checkout time
}

// OrderLine Model. UnitPrice is the game price captured at checkout.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                                   // Primary key
	OrderID   uint            `gorm:"not null;index" json:"order_id"`                         // Parent order
	GameID    uint            `gorm:"not null;index" json:"game_id"`                          // Purchased game
	Game      *Game           `gorm:"foreignKey:GameID;constraint:OnDelete:RESTRICT" json:"-"` // Game relation
	Quantity  int             `gorm:"not null" json:"quantity"`                               // Copies bought
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`          // Historical price
}

// LineTotal returns UnitPrice * Quantity
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
