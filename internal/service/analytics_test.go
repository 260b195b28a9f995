package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"game_store/internal/apperr"
	"game_store/internal/domain"
)

func TestTopPurchasedGames(t *testing.T) {
	f := newFixture(t)
	pub := f.account(domain.RolePublisher)
	p1 := f.account(domain.RolePlayer)
	p2 := f.account(domain.RolePlayer)
	a := f.game(pub, "A", "10.00")
	b := f.game(pub, "B", "10.00")
	c := f.game(pub, "C", "10.00")
	d := f.game(pub, "D", "10.00")

	f.buy(p1, map[uint]int{a.ID: 2, b.ID: 3, c.ID: 4})
	f.buy(p2, map[uint]int{a.ID: 3, c.ID: 4, d.ID: 1})

	top, err := f.svc.Analytics.TopPurchasedGames(f.ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{top[0].GameID, top[1].GameID, top[2].GameID})
	assert.Equal(t, 8, top[0].TotalSold)
	assert.Equal(t, "C", top[0].Title)
	assert.True(t, dec("80.00").Equal(top[0].TotalRevenue))

	all, err := f.svc.Analytics.TopPurchasedGames(f.ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTopPurchasedGamesTieBreak(t *testing.T) {
	f := newFixture(t)
	pub := f.account(domain.RolePublisher)
	player := f.account(domain.RolePlayer)
	first := f.game(pub, "First", "1.00")
	second := f.game(pub, "Second", "1.00")

	f.buy(player, map[uint]int{second.ID: 2, first.ID: 2})

	top, err := f.svc.Analytics.TopPurchasedGames(f.ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, first.ID, top[0].GameID)
	assert.Equal(t, second.ID, top[1].GameID)
}

func TestDailyRevenue(t *testing.T) {
	f := newFixture(t)
	pub := f.account(domain.RolePublisher)
	player := f.account(domain.RolePlayer)
	g := f.game(pub, "Daily", "10.00")

	today := time.Date(2030, 3, 15, 18, 30, 0, 0, time.UTC)
	f.svc.Analytics.now = fixedClock(today)

	f.svc.Orders.now = fixedClock(today.Add(-2 * 24 * time.Hour))
	f.buy(player, map[uint]int{g.ID: 1})
	f.buy(player, map[uint]int{g.ID: 2})
	f.svc.Orders.now = fixedClock(today.Add(-time.Hour))
	f.buy(player, map[uint]int{g.ID: 1})
	f.svc.Orders.now = fixedClock(today.Add(-10 * 24 * time.Hour))
	f.buy(player, map[uint]int{g.ID: 5})

	days, err := f.svc.Analytics.DailyRevenue(f.ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "2030-03-09", days[0].Date)
	assert.Equal(t, "2030-03-15", days[6].Date)
	assert.True(t, dec("30.00").Equal(days[4].Revenue), "day %s: %s", days[4].Date, days[4].Revenue)
	assert.True(t, dec("10.00").Equal(days[6].Revenue))
	for _, i := range []int{0, 1, 2, 3, 5} {
		assert.True(t, days[i].Revenue.IsZero(), days[i].Date)
	}

	def, err := f.svc.Analytics.DailyRevenue(f.ctx, 0)
	require.NoError(t, err)
	assert.Len(t, def, DefaultDays)

	_, err = f.svc.Analytics.DailyRevenue(f.ctx, MaxDays+1)
	assert.True(t, apperr.Is(err, apperr.KindInvalidRequest))
}

func TestRevenueAndSummary(t *testing.T) {
	f := newFixture(t)
	pub := f.account(domain.RolePublisher)
	player := f.account(domain.RolePlayer)
	g := f.game(pub, "Summary", "19.99")

	now := time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
	f.svc.Analytics.now = fixedClock(now)
	f.svc.Orders.now = fixedClock(now.Add(-40 * 24 * time.Hour))
	f.buy(player, map[uint]int{g.ID: 1})
	f.svc.Orders.now = fixedClock(now.Add(-24 * time.Hour))
	f.buy(player, map[uint]int{g.ID: 2})

	rev, err := f.svc.Analytics.RevenueLast30Days(f.ctx)
	require.NoError(t, err)
	assert.True(t, dec("39.98").Equal(rev), "revenue %s", rev)

	sum, err := f.svc.Analytics.Summary(f.ctx)
	require.NoError(t, err)
	assert.True(t, dec("59.97").Equal(sum.TotalRevenue), "total %s", sum.TotalRevenue)
	assert.Equal(t, int64(2), sum.TotalOrders)
	assert.Equal(t, int64(2), sum.TotalAccounts)
}

func TestAnalyticsEmptyStore(t *testing.T) {
	f := newFixture(t)

	sum, err := f.svc.Analytics.Summary(f.ctx)
	require.NoError(t, err)
	assert.True(t, sum.TotalRevenue.IsZero())
	assert.Zero(t, sum.TotalOrders)
	assert.Zero(t, sum.TotalAccounts)

	top, err := f.svc.Analytics.TopPurchasedGames(f.ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)

	rev, err := f.svc.Analytics.RevenueLast30Days(f.ctx)
	require.NoError(t, err)
	assert.True(t, rev.IsZero())
}

func TestTopGamesAggregatesInSQL(t *testing.T) {
	sql := mysqlDryRun(t).ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []GameSales
		return topGames(tx, 3).Find(&rows)
	})
	assert.Contains(t, sql, "SUM(order_lines.quantity) AS total_sold")
	assert.Contains(t, sql, "GROUP BY order_lines.game_id, games.title")
	assert.Contains(t, sql, "ORDER BY total_sold DESC, order_lines.game_id ASC")
	assert.True(t, strings.HasSuffix(sql, "LIMIT 3"), sql)
}
