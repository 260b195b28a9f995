package domain

// All lists every persisted model in dependency order for migration
func All() []any {
	return []any{&Account{}, &Game{}, &CartEntry{}, &Order{}, &OrderLine{}, &Review{}, &Coupon{}}
}
