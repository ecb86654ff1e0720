package enums

import "fmt"

// DiscountScope separates cart-wide discounts from product-filtered ones.
type DiscountScope string

const (
	DiscountScopeCart            DiscountScope = "cart"
	DiscountScopeProductFiltered DiscountScope = "product_filtered"
)

var validDiscountScopes = []DiscountScope{
	DiscountScopeCart,
	DiscountScopeProductFiltered,
}

// String implements fmt.Stringer.
func (s DiscountScope) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountScope.
func (s DiscountScope) IsValid() bool {
	for _, candidate := range validDiscountScopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDiscountScope converts raw input into a DiscountScope.
func ParseDiscountScope(value string) (DiscountScope, error) {
	for _, candidate := range validDiscountScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount scope %q", value)
}
