package enums

import "fmt"

// DiscountKind describes how a discount value is interpreted.
type DiscountKind string

const (
	DiscountKindPercentage  DiscountKind = "percentage"
	DiscountKindFixedAmount DiscountKind = "fixed_amount"
)

var validDiscountKinds = []DiscountKind{
	DiscountKindPercentage,
	DiscountKindFixedAmount,
}

// String implements fmt.Stringer.
func (k DiscountKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known DiscountKind.
func (k DiscountKind) IsValid() bool {
	for _, candidate := range validDiscountKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseDiscountKind converts raw input into a DiscountKind.
func ParseDiscountKind(value string) (DiscountKind, error) {
	for _, candidate := range validDiscountKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount kind %q", value)
}
