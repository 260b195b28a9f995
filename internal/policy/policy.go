// Package policy holds the role capability table and ownership checks applied
// to games, reviews, orders and accounts.
package policy

import (
	"game_store/internal/apperr"
	"game_store/internal/domain"
)

// Principal is the authenticated caller of a request
type Principal struct {
	AccountID uint        // Authenticated account
	Role      domain.Role // Role claim from the token
}

// IsAdmin reports whether the principal has the Admin role
func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }

// Action names an operation guarded by the capability table
type Action string

// Guarded actions
const (
	GameCreate     Action = "game:create"
	GameUpdate     Action = "game:update"
	GameDelete     Action = "game:delete"
	GameReassign   Action = "game:reassign"
	CartUse        Action = "cart:use"
	OrderCheckout  Action = "order:checkout"
	OrderRead      Action = "order:read"
	OrderSetStatus Action = "order:set-status"
	ReviewCreate   Action = "review:create"
	ReviewUpdate   Action = "review:update"
	ReviewDelete   Action = "review:delete"
	ReviewRead     Action = "review:read"
	CouponRead     Action = "coupon:read"
	CouponManage   Action = "coupon:manage"
	AccountRead    Action = "account:read"
	AccountUpdate  Action = "account:update"
	AccountManage  Action = "account:manage"
	AnalyticsRead  Action = "analytics:read"
)

// rule says which roles may perform an action at all, and which of those
// roles are further restricted to resources they own
type rule struct {
	roles     []domain.Role
	ownerOnly []domain.Role
}

var table = map[Action]rule{
	GameCreate:     {roles: roles(domain.RolePublisher, domain.RoleAdmin)},
	GameUpdate:     {roles: roles(domain.RolePublisher, domain.RoleAdmin), ownerOnly: roles(domain.RolePublisher)},
	GameDelete:     {roles: roles(domain.RoleAdmin)},
	GameReassign:   {roles: roles(domain.RoleAdmin)},
	CartUse:        {roles: roles(domain.RolePlayer)},
	OrderCheckout:  {roles: roles(domain.RolePlayer)},
	OrderRead:      {roles: roles(domain.RolePlayer, domain.RoleAdmin), ownerOnly: roles(domain.RolePlayer)},
	OrderSetStatus: {roles: roles(domain.RoleAdmin)},
	ReviewCreate:   {roles: roles(domain.RolePlayer)},
	ReviewUpdate:   {roles: roles(domain.RolePlayer), ownerOnly: roles(domain.RolePlayer)},
	ReviewDelete:   {roles: roles(domain.RolePlayer, domain.RolePublisher, domain.RoleAdmin), ownerOnly: roles(domain.RolePlayer, domain.RolePublisher)},
	ReviewRead:     {roles: roles(domain.RolePlayer, domain.RolePublisher, domain.RoleAdmin)},
	CouponRead:     {roles: roles(domain.RolePlayer, domain.RoleAdmin)},
	CouponManage:   {roles: roles(domain.RoleAdmin)},
	AccountRead:    {roles: roles(domain.RolePlayer, domain.RolePublisher, domain.RoleAdmin), ownerOnly: roles(domain.RolePlayer, domain.RolePublisher)},
	AccountUpdate:  {roles: roles(domain.RolePlayer, domain.RolePublisher, domain.RoleAdmin), ownerOnly: roles(domain.RolePlayer, domain.RolePublisher)},
	AccountManage:  {roles: roles(domain.RoleAdmin)},
	AnalyticsRead:  {roles: roles(domain.RoleAdmin)},
}

func roles(r ...domain.Role) []domain.Role { return r }

func contains(list []domain.Role, r domain.Role) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}

// Allows reports whether the role may perform the action on some resource
func Allows(r domain.Role, a Action) bool {
	ru, ok := table[a]
	return ok && contains(ru.roles, r)
}

// CanMutate reports whether p may perform a on a resource owned by ownerID
func CanMutate(p Principal, a Action, ownerID uint) bool {
	ru, ok := table[a]
	if !ok || !contains(ru.roles, p.Role) {
		return false
	}
	if contains(ru.ownerOnly, p.Role) {
		return p.AccountID == ownerID
	}
	return true
}

// Authorize is CanMutate returning a Forbidden error. Callers must have
// already proven the resource exists.
func Authorize(p Principal, a Action, ownerID uint) error {
	if !CanMutate(p, a, ownerID) {
		return apperr.Forbidden("not allowed to %s", a)
	}
	return nil
}

// Require checks only the role column of the table
func Require(p Principal, a Action) error {
	if !Allows(p.Role, a) {
		return apperr.Forbidden("role %s may not %s", p.Role, a)
	}
	return nil
}
