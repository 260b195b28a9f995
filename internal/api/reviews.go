package api

import (
	"net/http" // HTTP status codes

	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ReviewRequest is the body of POST /store/reviews
type ReviewRequest struct {
	GameID  uint    `json:"game_id" binding:"required"` // Reviewed game
	Rating  int     `json:"rating" binding:"required"`  // 1..5
	Comment *string `json:"comment"`                    // Optional text
}

// ReviewPatchRequest is the body of PATCH /store/reviews/{id}
type ReviewPatchRequest struct {
	Rating  *int    `json:"rating"`  // New rating
	Comment *string `json:"comment"` // New comment, empty clears it
}

// ListGameReviewsHandler returns every review of a game
func ListGameReviewsHandler(reviews *service.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID, ok := pathID(c, "gameId")
		if !ok {
			return
		}
		list, err := reviews.ListForGame(c.Request.Context(), gameID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": list, "total": len(list)})
	}
}

// GetReviewHandler returns one review
func GetReviewHandler(reviews *service.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		r, err := reviews.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// CreateReviewHandler records the caller's review of a game
func CreateReviewHandler(reviews *service.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "game_id and rating are required")
			return
		}
		p := principal(c) // Author
		r, err := reviews.Add(c.Request.Context(), p, req.GameID, req.Rating, req.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"review_id": r.ID, "game_id": r.GameID, "account_id": p.AccountID}).Info("Review added")
		c.JSON(http.StatusCreated, r)
	}
}

// UpdateReviewHandler lets an author change their review
func UpdateReviewHandler(reviews *service.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req ReviewPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		r, err := reviews.Update(c.Request.Context(), principal(c), id, service.ReviewPatch{Rating: req.Rating, Comment: req.Comment})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// DeleteReviewHandler removes a review on behalf of its author or an Admin
func DeleteReviewHandler(reviews *service.Reviews) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := reviews.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("review_id", id).Info("Review deleted")
		c.Status(http.StatusNoContent)
	}
}
