package api

import (
	"net/http" // HTTP status codes

	"game_store/internal/domain"  // Order statuses
	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// CheckoutRequest optionally names a coupon; the body itself may be omitted
type CheckoutRequest struct {
	CouponCode string `json:"coupon_code"` // Coupon to apply
}

// StatusRequest is the body of PATCH /store/orders/{id}/status
type StatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"` // New status
}

// CheckoutHandler turns the caller's cart into an order
func CheckoutHandler(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		// An empty body means "no coupon"
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "invalid request body")
				return
			}
		}
		order, err := orders.Checkout(c.Request.Context(), principal(c), req.CouponCode)
		if err != nil {
			respondError(c, err) // Empty cart, bad coupon or a concurrent checkout
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// ListOrdersHandler returns the caller's orders, or all orders for an Admin
func ListOrdersHandler(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context(), principal(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list, "total": len(list)})
	}
}

// GetOrderHandler returns one order to its purchaser or an Admin
func GetOrderHandler(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		order, err := orders.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatusHandler sets an order's status (Admin)
func UpdateOrderStatusHandler(orders *service.Orders) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req StatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}
		order, err := orders.UpdateStatus(c.Request.Context(), principal(c), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
