package enums

import "fmt"

// DiscountFilter is the discount's own eligibility dimension, used when no
// campaign association row overrides it.
type DiscountFilter string

const (
	DiscountFilterNone      DiscountFilter = "none"
	DiscountFilterProduct   DiscountFilter = "product"
	DiscountFilterCategory  DiscountFilter = "category"
	DiscountFilterIsNew     DiscountFilter = "is_new"
	DiscountFilterIsPopular DiscountFilter = "is_popular"
)

var validDiscountFilters = []DiscountFilter{
	DiscountFilterNone,
	DiscountFilterProduct,
	DiscountFilterCategory,
	DiscountFilterIsNew,
	DiscountFilterIsPopular,
}

// String implements fmt.Stringer.
func (f DiscountFilter) String() string {
	return string(f)
}

// IsValid reports whether the value is a known DiscountFilter.
func (f DiscountFilter) IsValid() bool {
	for _, candidate := range validDiscountFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseDiscountFilter converts raw input into a DiscountFilter.
func ParseDiscountFilter(value string) (DiscountFilter, error) {
	for _, candidate := range validDiscountFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount filter %q", value)
}
