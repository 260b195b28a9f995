package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"game_store/internal/apperr"
	"game_store/internal/domain"
)

// Cart owns per-account pending quantities
type Cart struct {
	db *gorm.DB
}

// NewCart creates the cart service
func NewCart(db *gorm.DB) *Cart {
	return &Cart{db: db}
}

// CartLine is one cart entry priced at the game's current price
type CartLine struct {
	GameID    uint            `json:"game_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the priced content of an account's cart
type CartView struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Get returns the account's cart priced at current catalog prices
func (s *Cart) Get(ctx context.Context, accountID uint) (*CartView, error) {
	var entries []domain.CartEntry
	err := s.db.WithContext(ctx).Preload("Game").
		Where("account_id = ?", accountID).Order("game_id").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	view := &CartView{Items: make([]CartLine, 0, len(entries)), Total: decimal.Zero}
	for _, e := range entries {
		if e.Game == nil {
			continue
		}
		sub := e.Game.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
		view.Items = append(view.Items, CartLine{
			GameID:    e.GameID,
			Title:     e.Game.Title,
			UnitPrice: e.Game.Price,
			Quantity:  e.Quantity,
			Subtotal:  sub,
		})
		view.Total = view.Total.Add(sub)
	}
	return view, nil
}

// Add puts quantity copies of a game in the cart, merging with an existing
// entry. The increment happens in a single upsert so concurrent adds never
// lose an update.
func (s *Cart) Add(ctx context.Context, accountID, gameID uint, quantity int) error {
	if quantity < 1 {
		return apperr.Invalid("quantity must be at least 1")
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Game{}).Where("id = ?", gameID).Count(&n).Error; err != nil {
		return apperr.FromStorage(err, "")
	}
	if n == 0 {
		return apperr.NotFound("game %d not found", gameID)
	}
	entry := domain.CartEntry{AccountID: accountID, GameID: gameID, Quantity: quantity}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "game_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("cart_entries.quantity + ?", quantity),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&entry).Error
	if err != nil {
		return apperr.FromStorage(err, "")
	}
	return nil
}

// Update sets the quantity of an existing entry, deleting it when quantity <= 0
func (s *Cart) Update(ctx context.Context, accountID, gameID uint, quantity int) error {
	db := s.db.WithContext(ctx)
	var entry domain.CartEntry
	err := db.Where("account_id = ? AND game_id = ?", accountID, gameID).First(&entry).Error
	if err != nil {
		return apperr.FromStorage(err, fmt.Sprintf("game %d is not in the cart", gameID))
	}
	q := db.Where("account_id = ? AND game_id = ?", accountID, gameID)
	if quantity > 0 {
		err = q.Model(&domain.CartEntry{}).Update("quantity", quantity).Error
	} else {
		err = q.Delete(&domain.CartEntry{}).Error
	}
	return apperr.FromStorage(err, "")
}

// Remove deletes one entry; removing an absent entry is not an error
func (s *Cart) Remove(ctx context.Context, accountID, gameID uint) error {
	err := s.db.WithContext(ctx).
		Where("account_id = ? AND game_id = ?", accountID, gameID).
		Delete(&domain.CartEntry{}).Error
	return apperr.FromStorage(err, "")
}

// Clear empties the account's cart; clearing an empty cart succeeds
func (s *Cart) Clear(ctx context.Context, accountID uint) error {
	return clearCart(s.db.WithContext(ctx), accountID)
}

func clearCart(db *gorm.DB, accountID uint) error {
	err := db.Where("account_id = ?", accountID).Delete(&domain.CartEntry{}).Error
	return apperr.FromStorage(err, "")
}
