package api

import (
	"time" // Token lifetime

	"game_store/internal/middleware" // Auth, role gates and logging
	"game_store/internal/policy"     // Capability table
	"game_store/internal/service"    // Business logic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// TokenStore revokes tokens on logout and answers revocation lookups
type TokenStore interface {
	TokenRevoker
	middleware.RevocationChecker
}

// Deps is everything the router needs
type Deps struct {
	DB        *gorm.DB          // Database for health checks
	Redis     *redis.Client     // Optional, health checks only
	Services  *service.Services // Business logic
	Tokens    TokenStore        // Logout support; nil disables /store/auth/logout
	JWTSecret string            // Token signing key
	JWTTTL    time.Duration     // Token lifetime
}

// SetupRouter wires every route onto a new gin engine
func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	var revoked middleware.RevocationChecker
	if d.Tokens != nil {
		revoked = d.Tokens
	}
	svc := d.Services
	auth := middleware.JWTAuthMiddleware(d.JWTSecret, svc.Accounts, revoked) // Bearer token, role re-read from the account
	gate := middleware.RequireAction                                         // Role check against the capability table

	r.GET("/healthz", HealthHandler(d.DB, d.Redis))

	store := r.Group("/store")

	// Auth routes
	store.POST("/auth/register", RegisterHandler(svc.Accounts, d.JWTSecret, d.JWTTTL))
	store.POST("/auth/login", LoginHandler(svc.Accounts, d.JWTSecret, d.JWTTTL))
	if d.Tokens != nil {
		store.POST("/auth/logout", auth, LogoutHandler(d.Tokens))
	}

	// Catalog routes, reads are public
	store.GET("/games", ListGamesHandler(svc.Catalog))
	store.GET("/games/:id", GetGameHandler(svc.Catalog))
	store.POST("/games", auth, gate(policy.GameCreate), CreateGameHandler(svc.Catalog))
	store.PATCH("/games/:id", auth, gate(policy.GameUpdate), UpdateGameHandler(svc.Catalog))
	store.DELETE("/games/:id", auth, gate(policy.GameDelete), DeleteGameHandler(svc.Catalog))

	// Cart routes, always the caller's own cart
	cart := store.Group("/cart", auth, gate(policy.CartUse))
	cart.GET("", GetCartHandler(svc.Cart))
	cart.POST("", AddToCartHandler(svc.Cart))
	cart.PATCH("/:gameId", UpdateCartHandler(svc.Cart))
	cart.DELETE("/:gameId", RemoveFromCartHandler(svc.Cart))
	cart.DELETE("", ClearCartHandler(svc.Cart))

	// Order routes
	orders := store.Group("/orders", auth)
	orders.POST("/checkout", gate(policy.OrderCheckout), CheckoutHandler(svc.Orders))
	orders.GET("", gate(policy.OrderRead), ListOrdersHandler(svc.Orders))
	orders.GET("/:id", gate(policy.OrderRead), GetOrderHandler(svc.Orders))
	orders.PATCH("/:id/status", gate(policy.OrderSetStatus), UpdateOrderStatusHandler(svc.Orders))

	// Review routes
	reviews := store.Group("/reviews", auth)
	reviews.GET("/game/:gameId", gate(policy.ReviewRead), ListGameReviewsHandler(svc.Reviews))
	reviews.GET("/:id", gate(policy.ReviewRead), GetReviewHandler(svc.Reviews))
	reviews.POST("", gate(policy.ReviewCreate), CreateReviewHandler(svc.Reviews))
	reviews.PATCH("/:id", gate(policy.ReviewUpdate), UpdateReviewHandler(svc.Reviews))
	reviews.DELETE("/:id", gate(policy.ReviewDelete), DeleteReviewHandler(svc.Reviews))

	// Coupon routes
	coupons := store.Group("/coupons", auth)
	coupons.GET("", gate(policy.CouponRead), ListCouponsHandler(svc.Coupons))
	coupons.GET("/code/:code", gate(policy.CouponRead), GetCouponByCodeHandler(svc.Coupons))
	coupons.GET("/:id", gate(policy.CouponManage), GetCouponHandler(svc.Coupons))
	coupons.POST("", gate(policy.CouponManage), CreateCouponHandler(svc.Coupons))
	coupons.PATCH("/:id/deactivate", gate(policy.CouponManage), DeactivateCouponHandler(svc.Coupons))

	// Analytics routes (protected, admin only)
	analytics := store.Group("/analytics", auth, middleware.AdminOnlyMiddleware())
	analytics.GET("", AnalyticsSummaryHandler(svc.Analytics))
	analytics.GET("/topGames", TopGamesHandler(svc.Analytics))
	analytics.GET("/revenue", RevenueHandler(svc.Analytics))
	analytics.GET("/revenue/daily", DailyRevenueHandler(svc.Analytics))

	// Account routes
	users := store.Group("/users", auth)
	users.GET("", gate(policy.AccountManage), ListUsersHandler(svc.Accounts))
	users.GET("/:id", gate(policy.AccountRead), GetUserHandler(svc.Accounts))
	users.PUT("/:id", gate(policy.AccountUpdate), UpdateUserHandler(svc.Accounts))
	users.PATCH("/:id/role", gate(policy.AccountManage), SetUserRoleHandler(svc.Accounts))
	users.DELETE("/:id", gate(policy.AccountManage), DeleteUserHandler(svc.Accounts))

	return r
}
