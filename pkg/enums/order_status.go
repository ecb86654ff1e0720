package enums

import "fmt"

// OrderStatus tracks an order through the venue's fulfillment flow.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the fulfillment flow allows moving from
// this status to the target. Cancellation is possible until preparation
// finishes; delivered and canceled are terminal.
func (o OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch o {
	case OrderStatusPlaced:
		return target == OrderStatusPreparing || target == OrderStatusCanceled
	case OrderStatusPreparing:
		return target == OrderStatusReady || target == OrderStatusCanceled
	case OrderStatusReady:
		return target == OrderStatusDelivered
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
