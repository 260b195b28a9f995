package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"game_store/internal/db/dbtest"
	"game_store/internal/domain"
	"game_store/internal/policy"
)

// mysqlDryRun renders statements with the MySQL dialect without a server
func mysqlDryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:pass@tcp(127.0.0.1:3306)/store?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	svc *Services
	seq int
}

func newFixture(t *testing.T) *fixture {
	gdb := dbtest.Open(t)
	return &fixture{t: t, ctx: context.Background(), db: gdb, svc: New(gdb)}
}

func (f *fixture) account(role domain.Role) policy.Principal {
	f.t.Helper()
	f.seq++
	name := string(role) + string(rune('a'+f.seq))
	acc, err := f.svc.Accounts.CreateWithRole(f.ctx, RegisterInput{
		Username: name + "x",
		Email:    name + "@example.com",
		Password: "Passw0rd!",
	}, role)
	require.NoError(f.t, err)
	return policy.Principal{AccountID: acc.ID, Role: acc.Role}
}

func (f *fixture) game(publisher policy.Principal, title, price string) *domain.Game {
	f.t.Helper()
	g, err := f.svc.Catalog.Create(f.ctx, publisher, GameInput{
		Title:       title,
		Description: title + " description",
		Price:       decimal.RequireFromString(price),
		Genre:       "Action",
		ReleaseDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		ImageURL:    "https://img.example.com/" + strings.ReplaceAll(title, " ", "-") + ".png",
	})
	require.NoError(f.t, err)
	return g
}

func (f *fixture) buy(player policy.Principal, items map[uint]int) *domain.Order {
	f.t.Helper()
	for gameID, qty := range items {
		require.NoError(f.t, f.svc.Cart.Add(f.ctx, player.AccountID, gameID, qty))
	}
	o, err := f.svc.Orders.Checkout(f.ctx, player, "")
	require.NoError(f.t, err)
	return o
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
