package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"game_store/internal/apperr"
	"game_store/internal/domain"
	"game_store/internal/policy"
)

// Accounts manages identities, credentials and roles
type Accounts struct {
	db *gorm.DB
}

// NewAccounts creates the account service
func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// RegisterInput is a new player's sign-up data
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AccountPatch changes profile fields; nil fields are left alone
type AccountPatch struct {
	Username *string
	Email    *string
	Password *string
}

func hashPassword(raw string) (*string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}
	s := string(hash)
	return &s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a Player account with a hashed password
func (s *Accounts) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	return s.create(ctx, in, domain.RolePlayer)
}

// CreateWithRole registers an account with an explicit role, used for seeding publishers and admins
func (s *Accounts) CreateWithRole(ctx context.Context, in RegisterInput, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, apperr.Invalid("unknown role %q", role)
	}
	return s.create(ctx, in, role)
}

func (s *Accounts) create(ctx context.Context, in RegisterInput, role domain.Role) (*domain.Account, error) {
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, apperr.FromStorage(err, "")
	}
	if n > 0 {
		return nil, apperr.Conflict("email already registered")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	acc := domain.Account{Username: in.Username, Email: email, PasswordHash: hash, Role: role}
	if err := s.db.WithContext(ctx).Create(&acc).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict("username or email already registered")
		}
		return nil, apperr.FromStorage(err, "")
	}
	return &acc, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password fail identically.
func (s *Accounts) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	acc, err := s.GetByEmail(ctx, email)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if acc.PasswordHash == nil || *acc.PasswordHash == "" {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(*acc.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return acc, nil
}

// GetByID looks an account up without authorization
func (s *Accounts) GetByID(ctx context.Context, id uint) (*domain.Account, error) {
	var acc domain.Account
	if err := findByID(ctx, s.db, &acc, id, "account"); err != nil {
		return nil, err
	}
	return &acc, nil
}

// GetByEmail looks an account up by login email
func (s *Accounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var acc domain.Account
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&acc).Error; err != nil {
		return nil, apperr.FromStorage(err, "account not found")
	}
	return &acc, nil
}

// Get returns an account to its owner or an Admin
func (s *Accounts) Get(ctx context.Context, p policy.Principal, id uint) (*domain.Account, error) {
	acc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.AccountRead, acc.ID); err != nil {
		return nil, err
	}
	return acc, nil
}

// List returns one page of accounts, optionally filtered by a case-insensitive
// username substring, together with the number of matches
func (s *Accounts) List(ctx context.Context, username string, page, pageSize int) ([]domain.Account, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Account{})
	if username = strings.TrimSpace(username); username != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(username)+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.FromStorage(err, "")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	out := []domain.Account{}
	if err := q.Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&out).Error; err != nil {
		return nil, 0, apperr.FromStorage(err, "")
	}
	return out, total, nil
}

// Update changes the profile of id on behalf of its owner or an Admin
func (s *Accounts) Update(ctx context.Context, p policy.Principal, id uint, patch AccountPatch) (*domain.Account, error) {
	acc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(p, policy.AccountUpdate, acc.ID); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if patch.Username != nil {
		if err := validateUsername(*patch.Username); err != nil {
			return nil, err
		}
		updates["username"] = *patch.Username
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = *hash
	}
	if len(updates) == 0 {
		return acc, nil
	}
	if err := s.db.WithContext(ctx).Model(acc).Updates(updates).Error; err != nil {
		if apperr.IsDuplicate(err) {
			return nil, apperr.Conflict("username or email already registered")
		}
		return nil, apperr.FromStorage(err, "account not found")
	}
	return s.GetByID(ctx, id)
}

// SetRole changes an account's role (Admin only at the route level)
func (s *Accounts) SetRole(ctx context.Context, p policy.Principal, id uint, role domain.Role) (*domain.Account, error) {
	if err := policy.Require(p, policy.AccountManage); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperr.Invalid("unknown role %q", role)
	}
	acc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.Role == domain.RolePublisher && role != domain.RolePublisher {
		var games int64
		if err := s.db.WithContext(ctx).Model(&domain.Game{}).Where("publisher_id = ?", id).Count(&games).Error; err != nil {
			return nil, apperr.FromStorage(err, "")
		}
		if games > 0 {
			return nil, apperr.Conflict("publisher still owns %d games", games)
		}
	}
	if err := s.db.WithContext(ctx).Model(acc).Update("role", role).Error; err != nil {
		return nil, apperr.FromStorage(err, "account not found")
	}
	acc.Role = role
	return acc, nil
}

// Delete removes an account that owns no orders, games or reviews. Its cart goes with it.
func (s *Accounts) Delete(ctx context.Context, p policy.Principal, id uint) error {
	if err := policy.Require(p, policy.AccountManage); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ref := range []struct {
			model  any
			column string
			what   string
		}{
			{&domain.Order{}, "account_id", "orders"},
			{&domain.Game{}, "publisher_id", "games"},
			{&domain.Review{}, "account_id", "reviews"},
		} {
			var n int64
			if err := tx.Model(ref.model).Where(ref.column+" = ?", id).Count(&n).Error; err != nil {
				return apperr.FromStorage(err, "")
			}
			if n > 0 {
				return apperr.Conflict("account still has %d %s", n, ref.what)
			}
		}
		if err := tx.Where("account_id = ?", id).Delete(&domain.CartEntry{}).Error; err != nil {
			return apperr.FromStorage(err, "")
		}
		if err := tx.Delete(&domain.Account{}, id).Error; err != nil {
			return apperr.FromStorage(err, "account not found")
		}
		return nil
	})
}
