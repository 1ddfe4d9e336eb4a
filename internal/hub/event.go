// Package hub implements the in-process broadcast layer: a registry of live
// channel sessions keyed by partner identity, and the fan-out of location and
// order events to every connected subscriber.
//
// Delivery is fire-and-forget, at-most-once, best-effort by design: a session
// whose outbound buffer is saturated or whose transport has closed silently
// drops that one event. No queueing, no retries, no backpressure.
package hub

import (
	"encoding/json"
	"time"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// Wire discriminators for server→client events, carried in the "type" field.
const (
	KindLocationUpdate    = "location_update"
	KindOrderStatusUpdate = "order_status_update"
)

// Event is a broadcast payload deliverable to channel sessions. Events are
// serialized once per publish and pushed verbatim to every session.
type Event interface {
	// Kind returns the wire discriminator for the event.
	Kind() string
}

// LocationUpdated announces a partner's latest accepted position. OrderID is
// set when the partner had an active order at ingest time so trackers can
// correlate the movement with a delivery.
type LocationUpdated struct {
	Type      string    `json:"type"`
	PartnerID string    `json:"partner_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	OrderID   *string   `json:"order_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLocationUpdated builds a LocationUpdated event stamped with now.
func NewLocationUpdated(partnerID string, lat, lng float64, orderID *string) LocationUpdated {
	return LocationUpdated{
		Type:      KindLocationUpdate,
		PartnerID: partnerID,
		Latitude:  lat,
		Longitude: lng,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	}
}

// Kind returns the wire discriminator for LocationUpdated.
func (LocationUpdated) Kind() string { return KindLocationUpdate }

// OrderStatusChanged announces a successful order status transition.
type OrderStatusChanged struct {
	Type      string             `json:"type"`
	OrderID   string             `json:"order_id"`
	Status    domain.OrderStatus `json:"status"`
	PartnerID *string            `json:"partner_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewOrderStatusChanged builds an OrderStatusChanged event stamped with now.
func NewOrderStatusChanged(orderID string, status domain.OrderStatus, partnerID *string) OrderStatusChanged {
	return OrderStatusChanged{
		Type:      KindOrderStatusUpdate,
		OrderID:   orderID,
		Status:    status,
		PartnerID: partnerID,
		Timestamp: time.Now().UTC(),
	}
}

// Kind returns the wire discriminator for OrderStatusChanged.
func (OrderStatusChanged) Kind() string { return KindOrderStatusUpdate }

// encode serializes an event to its wire form.
func encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}
