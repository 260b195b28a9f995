package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"game_store/internal/apperr"
	"game_store/internal/domain"
)

// Analytics limits
const (
	DefaultTopGames = 5
	DefaultDays     = 30
	MaxDays         = 366
)

// Analytics derives read-only reports from orders. It never writes.
type Analytics struct {
	db  *gorm.DB
	now Clock
}

// NewAnalytics creates the analytics service
func NewAnalytics(db *gorm.DB) *Analytics {
	return &Analytics{db: db, now: utcNow}
}

// Summary is the store-wide overview
type Summary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int64           `json:"total_orders"`
	TotalAccounts int64           `json:"total_accounts"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// GameSales is one row of the best-seller ranking
type GameSales struct {
	GameID       uint            `json:"game_id"`
	Title        string          `json:"title"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// DailyRevenue is the revenue of one UTC calendar day
type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Summary totals revenue and counts orders and accounts
func (s *Analytics) Summary(ctx context.Context) (*Summary, error) {
	db := s.db.WithContext(ctx)
	var totals orderTotals
	if err := db.Model(&domain.Order{}).Select("COUNT(*) AS orders, SUM(total) AS revenue").Scan(&totals).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	var accounts int64
	if err := db.Model(&domain.Account{}).Count(&accounts).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	out := &Summary{
		TotalRevenue:  money(totals.Revenue),
		TotalOrders:   totals.Orders,
		TotalAccounts: accounts,
		GeneratedAt:   s.now(),
	}
	return out, nil
}

// topGames groups order lines per game, best sellers first, ties broken by
// ascending game id
func topGames(db *gorm.DB, n int) *gorm.DB {
	return db.Model(&domain.OrderLine{}).
		Select("order_lines.game_id AS game_id, COALESCE(games.title, '') AS title, " +
			"SUM(order_lines.quantity) AS total_sold, " +
			"SUM(order_lines.unit_price * order_lines.quantity) AS total_revenue").
		Joins("LEFT JOIN games ON games.id = order_lines.game_id").
		Group("order_lines.game_id, games.title").
		Order("total_sold DESC, order_lines.game_id ASC").
		Limit(n)
}

// TopPurchasedGames ranks games by units sold across all orders. n <= 0
// means the default.
func (s *Analytics) TopPurchasedGames(ctx context.Context, n int) ([]GameSales, error) {
	if n <= 0 {
		n = DefaultTopGames
	}
	ranked := []GameSales{}
	if err := topGames(s.db.WithContext(ctx), n).Find(&ranked).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	for i := range ranked {
		ranked[i].TotalRevenue = ranked[i].TotalRevenue.Round(2)
	}
	return ranked, nil
}

// RevenueLast30Days sums order totals placed in the trailing 30 days
func (s *Analytics) RevenueLast30Days(ctx context.Context) (decimal.Decimal, error) {
	var totals orderTotals
	since := s.now().Add(-30 * 24 * time.Hour)
	err := s.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COUNT(*) AS orders, SUM(total) AS revenue").
		Where("ordered_at >= ?", since).Scan(&totals).Error
	if err != nil {
		return decimal.Zero, apperr.FromStorage(err, "")
	}
	return money(totals.Revenue), nil
}

// DailyRevenue returns exactly days entries, oldest first, ending today (UTC).
// Days without orders report zero.
func (s *Analytics) DailyRevenue(ctx context.Context, days int) ([]DailyRevenue, error) {
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		return nil, apperr.Invalid("days cannot exceed %d", MaxDays)
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(days - 1))

	var orders []domain.Order
	err := s.db.WithContext(ctx).Select("id", "total", "ordered_at").
		Where("ordered_at >= ? AND ordered_at < ?", start, today.AddDate(0, 0, 1)).
		Find(&orders).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "")
	}

	buckets := make(map[string]decimal.Decimal, days)
	for _, o := range orders {
		key := o.OrderedAt.UTC().Format(time.DateOnly)
		buckets[key] = buckets[key].Add(o.Total)
	}
	out := make([]DailyRevenue, 0, days)
	for d := 0; d < days; d++ {
		key := start.AddDate(0, 0, d).Format(time.DateOnly)
		rev, ok := buckets[key]
		if !ok {
			rev = decimal.Zero
		}
		out = append(out, DailyRevenue{Date: key, Revenue: rev})
	}
	return out, nil
}

// orderTotals receives COUNT and SUM over orders
type orderTotals struct {
	Orders  int64
	Revenue decimal.NullDecimal
}

// money turns a SQL SUM into cents; SUM over no rows is zero
func money(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal.Round(2)
}
