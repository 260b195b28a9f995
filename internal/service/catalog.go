package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"game_store/internal/apperr"
	"game_store/internal/domain"
	"game_store/internal/policy"
)

// Catalog owns game listings and publisher ownership of them
type Catalog struct {
	db  *gorm.DB
	now Clock
}

// NewCatalog creates the catalog service
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db, now: utcNow}
}

// Paging limits for catalog listing
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// sortColumns whitelists sortable fields so user input never reaches ORDER BY
var sortColumns = map[string]string{
	"title":       "title",
	"price":       "price",
	"releasedate": "release_date",
	"genre":       "genre",
}

// GameQuery filters, sorts and pages the catalog. Zero values mean "no filter".
type GameQuery struct {
	Genre        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	PublisherID  *uint
	ReleasedFrom *time.Time
	ReleasedTo   *time.Time
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

// GamePage is one page of a catalog listing
type GamePage struct {
	Games       []domain.Game `json:"games"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
	TotalCount  int64         `json:"total_count"`
	TotalPages  int           `json:"total_pages"`
	HasPrevious bool          `json:"has_previous"`
	HasNext     bool          `json:"has_next"`
}

// GameInput creates a game. PublisherID is ignored for Publisher callers.
type GameInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Genre       string
	ReleaseDate time.Time
	ImageURL    string
	PublisherID *uint
}

// GamePatch updates a game; nil fields are left alone
type GamePatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Genre       *string
	ReleaseDate *time.Time
	ImageURL    *string
	PublisherID *uint
}

func (q *GameQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// List returns one filtered, sorted page of games
func (s *Catalog) List(ctx context.Context, q GameQuery) (*GamePage, error) {
	q.normalize()
	db := s.db.WithContext(ctx).Model(&domain.Game{})
	if g := strings.TrimSpace(q.Genre); g != "" {
		db = db.Where("LOWER(genre) = ?", strings.ToLower(g))
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		db = db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if q.PublisherID != nil {
		db = db.Where("publisher_id = ?", *q.PublisherID)
	}
	if q.ReleasedFrom != nil {
		db = db.Where("release_date >= ?", q.ReleasedFrom.UTC())
	}
	if q.ReleasedTo != nil {
		db = db.Where("release_date <= ?", q.ReleasedTo.UTC())
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}

	order := "ASC"
	if strings.EqualFold(q.SortOrder, "desc") {
		order = "DESC"
	}
	col, ok := sortColumns[strings.ToLower(q.SortBy)]
	if !ok {
		col = "id"
	}
	games := []domain.Game{}
	err := db.Order(col + " " + order).Order("id " + order).
		Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).
		Find(&games).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "")
	}

	totalPages := (int(total) + q.PageSize - 1) / q.PageSize
	return &GamePage{
		Games:       games,
		Page:        q.Page,
		PageSize:    q.PageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasPrevious: q.Page > 1,
		HasNext:     q.Page < totalPages,
	}, nil
}

// Get returns a single game
func (s *Catalog) Get(ctx context.Context, id uint) (*domain.Game, error) {
	var g domain.Game
	if err := findByID(ctx, s.db, &g, id, "game"); err != nil {
		return nil, err
	}
	return &g, nil
}

// requirePublisher checks that id names an account with the Publisher role
func (s *Catalog) requirePublisher(ctx context.Context, id uint) error {
	var acc domain.Account
	err := s.db.WithContext(ctx).First(&acc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Invalid("publisher %d does not exist", id)
	}
	if err != nil {
		return apperr.FromStorage(err, "")
	}
	if acc.Role != domain.RolePublisher {
		return apperr.Invalid("account %d is not a publisher", id)
	}
	return nil
}

func (s *Catalog) validateFields(title, description, genre, imageURL string, price decimal.Decimal, release time.Time) error {
	if err := validateLength("title", strings.TrimSpace(title), maxTitleLen); err != nil {
		return err
	}
	if err := validateLength("description", strings.TrimSpace(description), maxDescriptionLen); err != nil {
		return err
	}
	if err := validateLength("genre", strings.TrimSpace(genre), maxGenreLen); err != nil {
		return err
	}
	if price.IsNegative() {
		return apperr.Invalid("price must be non-negative")
	}
	if !price.Equal(price.Round(2)) {
		return apperr.Invalid("price cannot have more than two decimal places")
	}
	if release.IsZero() {
		return apperr.Invalid("release_date is required")
	}
	if release.After(s.now()) {
		return apperr.Invalid("release_date cannot be in the future")
	}
	return validateImageURL(imageURL)
}

// Create adds a game. Publishers always own what they create; Admins must
// name a publisher account.
func (s *Catalog) Create(ctx context.Context, p policy.Principal, in GameInput) (*domain.Game, error) {
	if err := policy.Require(p, policy.GameCreate); err != nil {
		return nil, err
	}
	if err := s.validateFields(in.Title, in.Description, in.Genre, in.ImageURL, in.Price, in.ReleaseDate); err != nil {
		return nil, err
	}
	publisherID := p.AccountID
	if p.IsAdmin() {
		if in.PublisherID == nil {
			return nil, apperr.Invalid("publisher_id is required")
		}
		publisherID = *in.PublisherID
	}
	if err := s.requirePublisher(ctx, publisherID); err != nil {
		return nil, err
	}
	g := domain.Game{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Genre:       strings.TrimSpace(in.Genre),
		PublisherID: publisherID,
		ReleaseDate: in.ReleaseDate.UTC(),
		ImageURL:    in.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&g).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	return &g, nil
}

// Update changes a game owned by the calling publisher, or any game for an Admin.
// Only Admins may move a game to another publisher.
func (s *Catalog) Update(ctx context.Context, p policy.Principal, id uint, patch GamePatch) (*domain.Game, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.GameUpdate, g.PublisherID); err != nil {
		return nil, err
	}
	next := *g
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.Genre != nil {
		next.Genre = strings.TrimSpace(*patch.Genre)
	}
	if patch.ReleaseDate != nil {
		next.ReleaseDate = patch.ReleaseDate.UTC()
	}
	if patch.ImageURL != nil {
		next.ImageURL = *patch.ImageURL
	}
	if err := s.validateFields(next.Title, next.Description, next.Genre, next.ImageURL, next.Price, next.ReleaseDate); err != nil {
		return nil, err
	}
	if patch.PublisherID != nil && *patch.PublisherID != g.PublisherID {
		if err := policy.Require(p, policy.GameReassign); err != nil {
			return nil, err
		}
		if err := s.requirePublisher(ctx, *patch.PublisherID); err != nil {
			return nil, err
		}
		next.PublisherID = *patch.PublisherID
	}
	err = s.db.WithContext(ctx).Model(g).Updates(map[string]any{
		"title":        next.Title,
		"description":  next.Description,
		"price":        next.Price,
		"genre":        next.Genre,
		"release_date": next.ReleaseDate,
		"image_url":    next.ImageURL,
		"publisher_id": next.PublisherID,
	}).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "game not found")
	}
	return s.Get(ctx, id)
}

// Delete removes a game that has never been ordered, together with its cart
// entries and reviews
func (s *Catalog) Delete(ctx context.Context, p policy.Principal, id uint) error {
	if err := policy.Require(p, policy.GameDelete); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sold int64
		if err := tx.Model(&domain.OrderLine{}).Where("game_id = ?", id).Count(&sold).Error; err != nil {
			return apperr.FromStorage(err, "")
		}
		if sold > 0 {
			return apperr.Conflict("game has been purchased and cannot be deleted")
		}
		if err := tx.Where("game_id = ?", id).Delete(&domain.CartEntry{}).Error; err != nil {
			return apperr.FromStorage(err, "")
		}
		if err := tx.Where("game_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return apperr.FromStorage(err, "")
		}
		if err := tx.Delete(&domain.Game{}, id).Error; err != nil {
			return apperr.FromStorage(err, "game not found")
		}
		return nil
	})
}
