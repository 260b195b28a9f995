package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"game_store/internal/apperr"
	"game_store/internal/domain"
	"game_store/internal/policy"
)

// Locker serializes checkouts of the same account across processes
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// OrderOption configures the order service
type OrderOption func(*Orders)

// WithLocker guards each checkout with a per-account lock
func WithLocker(l Locker, ttl time.Duration) OrderOption {
	return func(s *Orders) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithOrderClock replaces the clock used to stamp orders
func WithOrderClock(c Clock) OrderOption {
	return func(s *Orders) { s.now = c }
}

// Orders converts carts into immutable orders
type Orders struct {
	db      *gorm.DB
	now     Clock
	locker  Locker
	lockTTL time.Duration
}

// NewOrders creates the order service
func NewOrders(db *gorm.DB, opts ...OrderOption) *Orders {
	s := &Orders{db: db, now: utcNow, lockTTL: 10 * time.Second}
	for _, o := range opts {
		o(s)
	}
	return s
}

// applyDiscount returns subtotal less pct percent, the discount rounded to cents
func applyDiscount(subtotal decimal.Decimal, pct int) decimal.Decimal {
	if pct <= 0 {
		return subtotal
	}
	off := subtotal.Mul(decimal.NewFromInt(int64(pct))).Div(decimal.NewFromInt(100)).Round(2)
	return subtotal.Sub(off)
}

// lockedCart selects the cart rows of accountID FOR UPDATE; cart writes for
// that account block until the checkout transaction ends
func lockedCart(tx *gorm.DB, accountID uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("account_id = ?", accountID).
		Order("game_id")
}

// Checkout turns the caller's cart into a Completed order at current prices,
// optionally applying a coupon, and empties the cart. Everything happens in
// one transaction that holds row locks on the cart: either the order exists
// and the cart is empty, or neither changed.
func (s *Orders) Checkout(ctx context.Context, p policy.Principal, couponCode string) (*domain.Order, error) {
	if err := policy.Require(p, policy.OrderCheckout); err != nil {
		return nil, err
	}
	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, fmt.Sprintf("checkout:%d", p.AccountID), s.lockTTL)
		if err != nil {
			return nil, apperr.Internal(err, "failed to acquire checkout lock")
		}
		if !ok {
			return nil, apperr.Conflict("a checkout is already in progress")
		}
		defer release()
	}

	couponCode = strings.TrimSpace(couponCode)
	var order domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries []domain.CartEntry
		if err := lockedCart(tx, p.AccountID).Preload("Game").Find(&entries).Error; err != nil {
			return apperr.FromStorage(err, "")
		}
		if len(entries) == 0 {
			return apperr.Invalid("cart is empty")
		}

		now := s.now()
		order = domain.Order{
			AccountID: p.AccountID,
			Status:    domain.OrderCompleted,
			OrderedAt: now,
			Subtotal:  decimal.Zero,
		}
		for _, e := range entries {
			if e.Game == nil {
				return apperr.Invalid("game %d is no longer available", e.GameID)
			}
			line := domain.OrderLine{GameID: e.GameID, Quantity: e.Quantity, UnitPrice: e.Game.Price}
			order.Lines = append(order.Lines, line)
			order.Subtotal = order.Subtotal.Add(line.LineTotal())
		}

		if couponCode != "" {
			var c domain.Coupon
			err := tx.Where("code = ?", couponCode).First(&c).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Invalid("coupon %s does not exist", couponCode)
			}
			if err != nil {
				return apperr.FromStorage(err, "")
			}
			if !c.Usable(now) {
				return apperr.Invalid("coupon %s is inactive or expired", couponCode)
			}
			order.CouponCode = &c.Code
			order.DiscountPercent = c.DiscountPercent
		}
		order.Total = applyDiscount(order.Subtotal, order.DiscountPercent)

		if err := tx.Create(&order).Error; err != nil {
			return apperr.FromStorage(err, "")
		}
		return clearCart(tx, p.AccountID)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"account_id": order.AccountID,
		"total":      order.Total.StringFixed(2),
		"coupon":     couponCode,
	}).Info("Checkout completed")
	return &order, nil
}

// Get returns one order with its lines. Existence is checked before ownership.
func (s *Orders) Get(ctx context.Context, p policy.Principal, id uint) (*domain.Order, error) {
	if err := policy.Require(p, policy.OrderRead); err != nil {
		return nil, err
	}
	var o domain.Order
	if err := s.db.WithContext(ctx).Preload("Lines").First(&o, id).Error; err != nil {
		return nil, apperr.FromStorage(err, "order not found")
	}
	if err := policy.Authorize(p, policy.OrderRead, o.AccountID); err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns the caller's orders, or every order for an Admin, newest first
func (s *Orders) List(ctx context.Context, p policy.Principal) ([]domain.Order, error) {
	if err := policy.Require(p, policy.OrderRead); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Preload("Lines")
	if !p.IsAdmin() {
		q = q.Where("account_id = ?", p.AccountID)
	}
	orders := []domain.Order{}
	if err := q.Order("ordered_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	return orders, nil
}

// UpdateStatus sets the status of an order. Any transition between known
// statuses is accepted.
func (s *Orders) UpdateStatus(ctx context.Context, p policy.Principal, id uint, status domain.OrderStatus) (*domain.Order, error) {
	if err := policy.Require(p, policy.OrderSetStatus); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.Invalid("unknown order status %q", status)
	}
	var o domain.Order
	if err := findByID(ctx, s.db, &o, id, "order"); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&o).Update("status", status).Error; err != nil {
		logrus.WithFields(logrus.Fields{"order_id": id, "error": err}).Error("Failed to update order status")
		return nil, apperr.FromStorage(err, "order not found")
	}
	logrus.WithFields(logrus.Fields{"order_id": id, "status": status}).Info("Order status changed")
	return s.Get(ctx, p, id)
}
