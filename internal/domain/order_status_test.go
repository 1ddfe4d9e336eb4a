package domain

import "testing"

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{StatusPrepared, StatusAssigned, StatusPickedUp, StatusOnTheWay, StatusDelivered, StatusCancelled} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if OrderStatus("returned").Valid() {
		t.Fatalf("expected unknown status to be invalid")
	}
	if OrderStatus("").Valid() {
		t.Fatalf("expected empty status to be invalid")
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	if !StatusDelivered.Terminal() || !StatusCancelled.Terminal() {
		t.Fatalf("delivered and cancelled must be terminal")
	}
	for _, s := range []OrderStatus{StatusPrepared, StatusAssigned, StatusPickedUp, StatusOnTheWay} {
		if s.Terminal() {
			t.Fatalf("%q must not be terminal", s)
		}
	}
}

// TestOrderStatus_TransitionTable exercises the full current×target matrix:
// only the immediate successor or cancellation from a non-terminal state is
// allowed.
func TestOrderStatus_TransitionTable(t *testing.T) {
	all := []OrderStatus{StatusPrepared, StatusAssigned, StatusPickedUp, StatusOnTheWay, StatusDelivered, StatusCancelled}

	allowed := map[OrderStatus]map[OrderStatus]bool{
		StatusPrepared: {StatusAssigned: true, StatusCancelled: true},
		StatusAssigned: {StatusPickedUp: true, StatusCancelled: true},
		StatusPickedUp: {StatusOnTheWay: true, StatusCancelled: true},
		StatusOnTheWay: {StatusDelivered: true, StatusCancelled: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			if got := from.CanTransitionTo(to); got != want {
				t.Fatalf("CanTransitionTo(%q -> %q) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatus_NoStageSkipping(t *testing.T) {
	// assigned -> on_the_way skips picked_up and must be rejected.
	if StatusAssigned.CanTransitionTo(StatusOnTheWay) {
		t.Fatalf("stage skipping must not be allowed")
	}
	if StatusPrepared.CanTransitionTo(StatusDelivered) {
		t.Fatalf("prepared -> delivered must not be allowed")
	}
}

func TestOrderStatus_Next(t *testing.T) {
	n, ok := StatusOnTheWay.Next()
	if !ok || n != StatusDelivered {
		t.Fatalf("Next(on_the_way) = %q, %v", n, ok)
	}
	if _, ok := StatusDelivered.Next(); ok {
		t.Fatalf("terminal states have no successor")
	}
	if _, ok := StatusCancelled.Next(); ok {
		t.Fatalf("terminal states have no successor")
	}
}

func TestOrderStatus_TransitionToUnknown(t *testing.T) {
	if StatusPrepared.CanTransitionTo(OrderStatus("lost")) {
		t.Fatalf("unknown target must be rejected")
	}
	if OrderStatus("lost").CanTransitionTo(StatusCancelled) {
		t.Fatalf("unknown current must be rejected")
	}
}
