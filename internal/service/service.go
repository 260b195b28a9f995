// Package service implements the storefront's business rules over gorm.
// Every method returns *apperr.Error values for expected failures.
package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"game_store/internal/apperr"
)

// Clock returns the current time; tests substitute a fixed one
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// Services bundles every component sharing one database handle
type Services struct {
	Accounts  *Accounts
	Catalog   *Catalog
	Cart      *Cart
	Orders    *Orders
	Reviews   *Reviews
	Coupons   *Coupons
	Analytics *Analytics
}

// New builds all services over db. opts apply to the order service.
func New(db *gorm.DB, opts ...OrderOption) *Services {
	return &Services{
		Accounts:  NewAccounts(db),
		Catalog:   NewCatalog(db),
		Cart:      NewCart(db),
		Orders:    NewOrders(db, opts...),
		Reviews:   NewReviews(db),
		Coupons:   NewCoupons(db),
		Analytics: NewAnalytics(db),
	}
}

// findByID loads dest by primary key, mapping a miss to NotFound
func findByID(ctx context.Context, db *gorm.DB, dest any, id uint, what string) error {
	if err := db.WithContext(ctx).First(dest, id).Error; err != nil {
		return apperr.FromStorage(err, what+" not found")
	}
	return nil
}
