package api

import (
	"fmt"      // Location header
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Release dates

	"game_store/internal/service" // Business logic

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Exact prices
	"github.com/sirupsen/logrus"    // Logging library
)

// GameRequest is the body of POST /store/games
type GameRequest struct {
	Title       string           `json:"title" binding:"required"`        // Display title
	Description string           `json:"description" binding:"required"`  // Store page text
	Price       *decimal.Decimal `json:"price" binding:"required"`        // List price
	Genre       string           `json:"genre" binding:"required"`        // Genre
	ReleaseDate *time.Time       `json:"release_date" binding:"required"` // Not in the future
	ImageURL    string           `json:"image_url" binding:"required"`    // Absolute URL
	PublisherID *uint            `json:"publisher_id"`                    // Required for Admin callers
}

// GamePatchRequest is the body of PATCH /store/games/{id}; absent fields are kept
type GamePatchRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Genre       *string          `json:"genre"`
	ReleaseDate *time.Time       `json:"release_date"`
	ImageURL    *string          `json:"image_url"`
	PublisherID *uint            `json:"publisher_id"` // Admin only
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

// gameQuery reads catalog filters from the query string
func gameQuery(c *gin.Context) (service.GameQuery, error) {
	q := service.GameQuery{
		Genre:     c.Query("genre"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", service.DefaultPageSize),
	}
	for name, dst := range map[string]**decimal.Decimal{"minPrice": &q.MinPrice, "maxPrice": &q.MaxPrice} {
		if s := c.Query(name); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return q, fmt.Errorf("%s must be a number", name)
			}
			*dst = &d
		}
	}
	if s := c.Query("publisherId"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return q, fmt.Errorf("publisherId must be a positive integer")
		}
		id := uint(v)
		q.PublisherID = &id
	}
	for name, dst := range map[string]**time.Time{"releasedFrom": &q.ReleasedFrom, "releasedTo": &q.ReleasedTo} {
		if s := c.Query(name); s != "" {
			t, err := parseDate(s)
			if err != nil {
				return q, fmt.Errorf("%s must be a date", name)
			}
			*dst = &t
		}
	}
	return q, nil
}

// ListGamesHandler returns a filtered, sorted page of the catalog
func ListGamesHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := gameQuery(c)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		page, err := catalog.List(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetGameHandler returns a single game
func GetGameHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		g, err := catalog.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, g)
	}
}

// CreateGameHandler publishes a new game
func CreateGameHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GameRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "title, description, price, genre, release_date and image_url are required")
			return
		}
		p := principal(c)
		g, err := catalog.Create(c.Request.Context(), p, service.GameInput{
			Title:       req.Title,
			Description: req.Description,
			Price:       *req.Price,
			Genre:       req.Genre,
			ReleaseDate: *req.ReleaseDate,
			ImageURL:    req.ImageURL,
			PublisherID: req.PublisherID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{"game_id": g.ID, "publisher_id": g.PublisherID, "by": p.AccountID}).Info("Game created")
		c.Header("Location", fmt.Sprintf("/store/games/%d", g.ID))
		c.JSON(http.StatusCreated, g)
	}
}

// UpdateGameHandler patches a game owned by the caller, or any game for an Admin
func UpdateGameHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req GamePatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		g, err := catalog.Update(c.Request.Context(), principal(c), id, service.GamePatch{
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Genre:       req.Genre,
			ReleaseDate: req.ReleaseDate,
			ImageURL:    req.ImageURL,
			PublisherID: req.PublisherID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("game_id", g.ID).Info("Game updated")
		c.JSON(http.StatusOK, g)
	}
}

// DeleteGameHandler removes a game that was never purchased
func DeleteGameHandler(catalog *service.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := catalog.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("game_id", id).Info("Game deleted")
		c.Status(http.StatusNoContent)
	}
}
