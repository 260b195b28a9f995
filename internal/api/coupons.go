package api

import (
	"net/http" // HTTP status codes
	"time"     // Coupon expiration

	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// CouponRequest is the body of POST /store/coupons. Active flag and creation
// time are assigned by the server.
type CouponRequest struct {
	Code            string     `json:"code" binding:"required"`             // Upper-case code players type in
	Name            string     `json:"name" binding:"required"`             // Display name
	DiscountPercent int        `json:"discount_percent" binding:"required"` // 1..100
	ExpiresAt       *time.Time `json:"expires_at" binding:"required"`       // Must be in the future
}

// ListCouponsHandler returns coupons; ?active=true keeps only usable ones
func ListCouponsHandler(coupons *service.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := coupons.List(c.Request.Context(), principal(c), c.Query("active") == "true")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": list, "total": len(list)})
	}
}

// GetCouponHandler returns a coupon by id
func GetCouponHandler(coupons *service.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		coupon, err := coupons.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

// GetCouponByCodeHandler looks a code up so a player can check it before checkout
func GetCouponByCodeHandler(coupons *service.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		coupon, err := coupons.GetByCode(c.Request.Context(), principal(c), c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

// CreateCouponHandler adds an active coupon
func CreateCouponHandler(coupons *service.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "code, name, discount_percent and expires_at are required")
			return
		}
		coupon, err := coupons.Create(c.Request.Context(), principal(c), service.CouponInput{
			Code:            req.Code,
			Name:            req.Name,
			DiscountPercent: req.DiscountPercent,
			ExpiresAt:       *req.ExpiresAt,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"coupon_id": coupon.ID, "code": coupon.Code}).Info("Coupon created")
		c.JSON(http.StatusCreated, coupon)
	}
}

// DeactivateCouponHandler switches a coupon off for good
func DeactivateCouponHandler(coupons *service.Coupons) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		coupon, err := coupons.Deactivate(c.Request.Context(), principal(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("coupon_id", id).Info("Coupon deactivated")
		c.JSON(http.StatusOK, coupon)
	}
}
