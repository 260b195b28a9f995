package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"game_store/internal/apperr"
	"game_store/internal/domain"
	"game_store/internal/policy"
)

// Coupons manages promotional codes
type Coupons struct {
	db  *gorm.DB
	now Clock
}

// NewCoupons creates the coupon service
func NewCoupons(db *gorm.DB) *Coupons {
	return &Coupons{db: db, now: utcNow}
}

// CouponInput creates a coupon. Active flag and creation time are server-assigned.
type CouponInput struct {
	Code            string
	Name            string
	DiscountPercent int
	ExpiresAt       time.Time
}

// List returns every coupon, optionally only the active ones
func (s *Coupons) List(ctx context.Context, p policy.Principal, activeOnly bool) ([]domain.Coupon, error) {
	if err := policy.Require(p, policy.CouponRead); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Model(&domain.Coupon{})
	if activeOnly {
		q = q.Where("is_active = ? AND expires_at > ?", true, s.now())
	}
	coupons := []domain.Coupon{}
	if err := q.Order("id").Find(&coupons).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	return coupons, nil
}

// Get returns one coupon by id
func (s *Coupons) Get(ctx context.Context, p policy.Principal, id uint) (*domain.Coupon, error) {
	if err := policy.Require(p, policy.CouponRead); err != nil {
		return nil, err
	}
	var c domain.Coupon
	if err := findByID(ctx, s.db, &c, id, "coupon"); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByCode looks a coupon up by its code, used to validate a code before checkout
func (s *Coupons) GetByCode(ctx context.Context, p policy.Principal, code string) (*domain.Coupon, error) {
	if err := policy.Require(p, policy.CouponRead); err != nil {
		return nil, err
	}
	var c domain.Coupon
	err := s.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&c).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "coupon not found")
	}
	return &c, nil
}

// Create adds an active coupon stamped with the current time
func (s *Coupons) Create(ctx context.Context, p policy.Principal, in CouponInput) (*domain.Coupon, error) {
	if err := policy.Require(p, policy.CouponManage); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(in.Code)
	if err := validateCouponCode(code); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := validateLength("name", name, maxCouponNameLen); err != nil {
		return nil, err
	}
	if in.DiscountPercent < 1 || in.DiscountPercent > 100 {
		return nil, apperr.Invalid("discount_percent must be between 1 and 100")
	}
	now := s.now()
	if !in.ExpiresAt.After(now) {
		return nil, apperr.Invalid("expires_at must be in the future")
	}
	c := domain.Coupon{
		Code:            code,
		Name:            name,
		DiscountPercent: in.DiscountPercent,
		IsActive:        true,
		CreatedAt:       now,
		ExpiresAt:       in.ExpiresAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict("coupon code %s already exists", code)
		}
		return nil, apperr.FromStorage(err, "")
	}
	return &c, nil
}

// Deactivate clears the active flag of an active coupon. A missing and an
// already-inactive coupon fail the same way. The expiry is left untouched.
func (s *Coupons) Deactivate(ctx context.Context, p policy.Principal, id uint) (*domain.Coupon, error) {
	if err := policy.Require(p, policy.CouponManage); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&domain.Coupon{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return nil, apperr.FromStorage(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Invalid("coupon not found or already inactive")
	}
	var c domain.Coupon
	if err := findByID(ctx, s.db, &c, id, "coupon"); err != nil {
		return nil, err
	}
	return &c, nil
}

// ExpireDue deactivates every active coupon whose expiry has passed and
// returns how many were changed
func (s *Coupons) ExpireDue(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&domain.Coupon{}).
		Where("is_active = ? AND expires_at <= ?", true, s.now()).
		Update("is_active", false)
	if res.Error != nil {
		return 0, apperr.FromStorage(res.Error, "")
	}
	if res.RowsAffected > 0 {
		logrus.WithField("count", res.RowsAffected).Info("Expired coupons deactivated")
	}
	return res.RowsAffected, nil
}
