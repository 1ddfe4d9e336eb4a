package domain

// OrderStatus is the closed set of order lifecycle states. Every status
// check in the codebase goes through this type; there is exactly one
// transition table, defined here.
type OrderStatus string

// Order lifecycle states. The happy path is
// prepared → assigned → picked_up → on_the_way → delivered, with cancelled
// reachable from any non-terminal state. Delivered and cancelled are
// terminal.
const (
	StatusPrepared  OrderStatus = "prepared"
	StatusAssigned  OrderStatus = "assigned"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusOnTheWay  OrderStatus = "on_the_way"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// successor maps each status to its immediate successor on the happy path.
// Terminal states and cancellation are handled separately in
// CanTransitionTo.
var successor = map[OrderStatus]OrderStatus{
	StatusPrepared: StatusAssigned,
	StatusAssigned: StatusPickedUp,
	StatusPickedUp: StatusOnTheWay,
	StatusOnTheWay: StatusDelivered,
}

// Valid reports whether s is one of the defined lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPrepared, StatusAssigned, StatusPickedUp, StatusOnTheWay, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Next returns the immediate successor of s on the happy path, and false
// when s has none (terminal states and cancelled).
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := successor[s]
	return n, ok
}

// CanTransitionTo reports whether an order currently in s may move to
// target. Allowed moves are the single immediate successor (no skipping
// stages) and cancellation from any non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !s.Valid() || !target.Valid() || s.Terminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	return successor[s] == target
}
