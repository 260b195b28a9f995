package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_store/internal/apperr"
	"game_store/internal/domain"
)

func TestCreateCoupon(t *testing.T) {
	f := newFixture(t)
	admin := f.account(domain.RoleAdmin)
	player := f.account(domain.RolePlayer)
	expires := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	c, err := f.svc.Coupons.Create(f.ctx, admin, CouponInput{
		Code: "SPRING-25", Name: "Spring sale", DiscountPercent: 25, ExpiresAt: expires,
	})
	require.NoError(t, err)
	assert.True(t, c.IsActive)
	assert.False(t, c.CreatedAt.IsZero())

	_, err = f.svc.Coupons.Create(f.ctx, admin, CouponInput{
		Code: "SPRING-25", Name: "Again", DiscountPercent: 5, ExpiresAt: expires,
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.Coupons.Create(f.ctx, player, CouponInput{
		Code: "MINE", Name: "Mine", DiscountPercent: 5, ExpiresAt: expires,
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	list, err := f.svc.Coupons.List(f.ctx, player, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	byCode, err := f.svc.Coupons.GetByCode(f.ctx, player, "SPRING-25")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byCode.ID)
}

func TestCreateCouponValidation(t *testing.T) {
	f := newFixture(t)
	admin := f.account(domain.RoleAdmin)
	future := time.Now().UTC().Add(time.Hour)

	cases := map[string]CouponInput{
		"lower case code": {Code: "spring", Name: "x", DiscountPercent: 10, ExpiresAt: future},
		"zero discount":   {Code: "ZERO", Name: "x", DiscountPercent: 0, ExpiresAt: future},
		"over 100":        {Code: "OVER", Name: "x", DiscountPercent: 101, ExpiresAt: future},
		"missing name":    {Code: "NONAME", DiscountPercent: 10, ExpiresAt: future},
		"past expiry":     {Code: "PAST", Name: "x", DiscountPercent: 10, ExpiresAt: time.Now().UTC().Add(-time.Hour)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Coupons.Create(f.ctx, admin, in)
			assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
		})
	}
}

func TestDeactivateCouponKeepsExpiry(t *testing.T) {
	f := newFixture(t)
	admin := f.account(domain.RoleAdmin)
	expires := time.Date(2099, 6, 1, 12, 0, 0, 0, time.UTC)

	c, err := f.svc.Coupons.Create(f.ctx, admin, CouponInput{
		Code: "ONCE", Name: "Once", DiscountPercent: 15, ExpiresAt: expires,
	})
	require.NoError(t, err)

	off, err := f.svc.Coupons.Deactivate(f.ctx, admin, c.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	assert.True(t, expires.Equal(off.ExpiresAt))

	_, err = f.svc.Coupons.Deactivate(f.ctx, admin, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
	_, err = f.svc.Coupons.Deactivate(f.ctx, admin, 404)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))

	stored, err := f.svc.Coupons.Get(f.ctx, admin, c.ID)
	require.NoError(t, err)
	assert.True(t, expires.Equal(stored.ExpiresAt))
}

func TestExpireDue(t *testing.T) {
	f := newFixture(t)
	admin := f.account(domain.RoleAdmin)
	now := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	f.svc.Coupons.now = fixedClock(now)

	soon, err := f.svc.Coupons.Create(f.ctx, admin, CouponInput{
		Code: "SOON", Name: "Soon", DiscountPercent: 10, ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	later, err := f.svc.Coupons.Create(f.ctx, admin, CouponInput{
		Code: "LATER", Name: "Later", DiscountPercent: 10, ExpiresAt: now.Add(72 * time.Hour),
	})
	require.NoError(t, err)

	f.svc.Coupons.now = fixedClock(now.Add(2 * time.Hour))
	n, err := f.svc.Coupons.ExpireDue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := f.svc.Coupons.Get(f.ctx, admin, soon.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.True(t, soon.ExpiresAt.Equal(got.ExpiresAt))

	got, err = f.svc.Coupons.Get(f.ctx, admin, later.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)

	active, err := f.svc.Coupons.List(f.ctx, admin, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "LATER", active[0].Code)

	n, err = f.svc.Coupons.ExpireDue(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
