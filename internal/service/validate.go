package service

import (
	"net/url"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"game_store/internal/apperr"
)

// fields checks single values with the same rules gin applies to request bodies
var fields = validator.New()

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9]{3,20}$`)
	couponCodePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 1000
	maxGenreLen       = 100
	maxImageURLLen    = 500
	maxCommentLen     = 500
	maxCouponCodeLen  = 50
	maxCouponNameLen  = 100
	maxEmailLen       = 255
	minPasswordLen    = 8
)

func validateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return apperr.Invalid("username must be 3-20 letters or digits")
	}
	return nil
}

// validateEmail expects an already normalized address
func validateEmail(s string) error {
	if s == "" {
		return apperr.Invalid("email is required")
	}
	if utf8.RuneCountInString(s) > maxEmailLen || fields.Var(s, "email") != nil {
		return apperr.Invalid("%q is not a valid email address", s)
	}
	return nil
}

// validatePassword requires length plus upper, lower and digit
func validatePassword(s string) error {
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if utf8.RuneCountInString(s) < minPasswordLen || !upper || !lower || !digit {
		return apperr.Invalid("password must be at least 8 characters with upper case, lower case and a digit")
	}
	return nil
}

func validateRating(r int) error {
	if r < 1 || r > 5 {
		return apperr.Invalid("rating must be between 1 and 5")
	}
	return nil
}

func validateComment(c *string) error {
	if c != nil && utf8.RuneCountInString(*c) > maxCommentLen {
		return apperr.Invalid("comment cannot exceed %d characters", maxCommentLen)
	}
	return nil
}

func validateLength(field, s string, max int) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return apperr.Invalid("%s is required", field)
	}
	if n > max {
		return apperr.Invalid("%s cannot exceed %d characters", field, max)
	}
	return nil
}

func validateImageURL(s string) error {
	if s == "" {
		return apperr.Invalid("image_url is required")
	}
	if len(s) > maxImageURLLen {
		return apperr.Invalid("image_url cannot exceed %d characters", maxImageURLLen)
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return apperr.Invalid("image_url must be an absolute URL")
	}
	return nil
}

func validateCouponCode(s string) error {
	if s == "" || len(s) > maxCouponCodeLen || !couponCodePattern.MatchString(s) {
		return apperr.Invalid("coupon code must be 1-50 characters of A-Z, 0-9, '_' or '-'")
	}
	return nil
}
