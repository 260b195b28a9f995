package service

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"game_store/internal/apperr"
	"game_store/internal/domain"
	"game_store/internal/policy"
)

// Reviews manages one rating per (account, game)
type Reviews struct {
	db  *gorm.DB
	now Clock
}

// NewReviews creates the review service
func NewReviews(db *gorm.DB) *Reviews {
	return &Reviews{db: db, now: utcNow}
}

// ReviewPatch changes a review; nil fields are left alone
type ReviewPatch struct {
	Comment *string
	Rating  *int
}

func trimComment(c *string) *string {
	if c == nil {
		return nil
	}
	t := strings.TrimSpace(*c)
	if t == "" {
		return nil
	}
	return &t
}

// ListForGame returns the reviews of a game, newest first
func (s *Reviews) ListForGame(ctx context.Context, gameID uint) ([]domain.Review, error) {
	var g domain.Game
	if err := findByID(ctx, s.db, &g, gameID, "game"); err != nil {
		return nil, err
	}
	reviews := []domain.Review{}
	err := s.db.WithContext(ctx).Where("game_id = ?", gameID).
		Order("reviewed_at DESC").Order("id DESC").Find(&reviews).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	return reviews, nil
}

// Get returns a single review
func (s *Reviews) Get(ctx context.Context, id uint) (*domain.Review, error) {
	var r domain.Review
	if err := findByID(ctx, s.db, &r, id, "review"); err != nil {
		return nil, err
	}
	return &r, nil
}

// Add records the caller's review of a game. A second review of the same game is a Conflict.
func (s *Reviews) Add(ctx context.Context, p policy.Principal, gameID uint, rating int, comment *string) (*domain.Review, error) {
	if err := policy.Require(p, policy.ReviewCreate); err != nil {
		return nil, err
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	comment = trimComment(comment)
	if err := validateComment(comment); err != nil {
		return nil, err
	}
	var g domain.Game
	if err := findByID(ctx, s.db, &g, gameID, "game"); err != nil {
		return nil, err
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&domain.Review{}).
		Where("account_id = ? AND game_id = ?", p.AccountID, gameID).Count(&n).Error
	if err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	if n > 0 {
		return nil, apperr.Conflict("game already reviewed")
	}
	r := domain.Review{
		AccountID:  p.AccountID,
		GameID:     gameID,
		Comment:    comment,
		Rating:     rating,
		ReviewedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict("game already reviewed")
		}
		return nil, apperr.FromStorage(err, "")
	}
	return &r, nil
}

// Update changes the author's own review
func (s *Reviews) Update(ctx context.Context, p policy.Principal, id uint, patch ReviewPatch) (*domain.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.ReviewUpdate, r.AccountID); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
		updates["rating"] = *patch.Rating
	}
	if patch.Comment != nil {
		c := trimComment(patch.Comment)
		if err := validateComment(c); err != nil {
			return nil, err
		}
		updates["comment"] = c
	}
	if len(updates) == 0 {
		return r, nil
	}
	if err := s.db.WithContext(ctx).Model(r).Updates(updates).Error; err != nil {
		return nil, apperr.FromStorage(err, "review not found")
	}
	return s.Get(ctx, id)
}

// Delete removes a review on behalf of its author or an Admin
func (s *Reviews) Delete(ctx context.Context, p policy.Principal, id uint) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(p, policy.ReviewDelete, r.AccountID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&domain.Review{}, id).Error; err != nil {
		return apperr.FromStorage(err, "review not found")
	}
	return nil
}
