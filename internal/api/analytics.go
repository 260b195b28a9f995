package api

import (
	"net/http" // HTTP status codes
	"time"     // Report date format

	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// AnalyticsSummaryHandler returns store-wide totals
func AnalyticsSummaryHandler(analytics *service.Analytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := analytics.Summary(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_revenue":  sum.TotalRevenue,
			"total_orders":   sum.TotalOrders,
			"total_accounts": sum.TotalAccounts,
			"date":           sum.GeneratedAt.Format(time.DateOnly), // UTC day of the report
		})
	}
}

// TopGamesHandler ranks games by units sold; ?count defaults to 5
func TopGamesHandler(analytics *service.Analytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		top, err := analytics.TopPurchasedGames(c.Request.Context(), queryInt(c, "count", service.DefaultTopGames))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": top})
	}
}

// RevenueHandler returns revenue over the trailing 30 days
func RevenueHandler(analytics *service.Analytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		rev, err := analytics.RevenueLast30Days(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"last30DaysRevenue": rev})
	}
}

// DailyRevenueHandler returns one revenue entry per day; ?days defaults to 30
func DailyRevenueHandler(analytics *service.Analytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := analytics.DailyRevenue(c.Request.Context(), queryInt(c, "days", service.DefaultDays))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days})
	}
}
