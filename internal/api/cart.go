package api

import (
	"net/http" // HTTP status codes

	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// CartAddRequest adds copies of a game to the caller's cart
type CartAddRequest struct {
	GameID   uint `json:"game_id" binding:"required"` // Game to add
	Quantity int  `json:"quantity"`                   // Copies to add, 1 when omitted
}

// CartUpdateRequest sets the quantity of a cart entry; zero or less removes it
type CartUpdateRequest struct {
	Quantity *int `json:"quantity" binding:"required"` // New quantity
}

// writeCart responds with the caller's current cart
func writeCart(c *gin.Context, cart *service.Cart, status int) {
	view, err := cart.Get(c.Request.Context(), principal(c).AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, view)
}

// GetCartHandler returns the caller's cart priced at current prices
func GetCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeCart(c, cart, http.StatusOK)
	}
}

// AddToCartHandler merges a game into the caller's cart. Quantity defaults to 1.
func AddToCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := CartAddRequest{Quantity: 1} // Default before binding
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "game_id is required")
			return
		}
		if err := cart.Add(c.Request.Context(), principal(c).AccountID, req.GameID, req.Quantity); err != nil {
			respondError(c, err)
			return
		}
		writeCart(c, cart, http.StatusOK)
	}
}

// UpdateCartHandler changes the quantity of one entry
func UpdateCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "gameId") // Entry to change
		if !ok {
			return
		}
		var req CartUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "quantity is required")
			return
		}
		if err := cart.Update(c.Request.Context(), principal(c).AccountID, gameID, *req.Quantity); err != nil {
			respondError(c, err)
			return
		}
		writeCart(c, cart, http.StatusOK)
	}
}

// RemoveFromCartHandler drops one entry; dropping an absent one still succeeds
func RemoveFromCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "gameId")
		if !ok {
			return
		}
		if err := cart.Remove(c.Request.Context(), principal(c).AccountID, gameID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ClearCartHandler empties the caller's cart
func ClearCartHandler(cart *service.Cart) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := cart.Clear(c.Request.Context(), principal(c).AccountID); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
