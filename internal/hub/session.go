package hub

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/swiftroute/partner-backend/internal/domain"
)

// SessionState models the session lifecycle: Connecting → Open → Closed.
// A session starts unbound, becomes Open once a connect message binds it to
// a partner, and is Closed when the transport goes away. Closed is terminal;
// a reconnecting client gets a fresh session.
type SessionState int32

const (
	StateConnecting SessionState = iota
	StateOpen
	StateClosed
)

// String returns the state name for logs.
func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is the subset of *websocket.Conn the session drives. Tests substitute
// an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// LocationIngestor accepts one location sample arriving over the channel and
// runs it through the same persistence-and-broadcast path as the REST ingest
// endpoint.
type LocationIngestor interface {
	Ingest(ctx context.Context, partnerID string, lat, lng float64) (*domain.PartnerLocation, error)
}

// OrderTransitioner applies an order status transition requested over the
// channel.
type OrderTransitioner interface {
	Transition(ctx context.Context, orderID string, target domain.OrderStatus, partnerID string) (*domain.Order, error)
}

// Options tunes session transport behavior. Zero values fall back to the
// defaults below.
type Options struct {
	SendBuffer      int           // outbound queue length (default 16)
	MaxMessageBytes int64         // inbound frame cap (default 4 KiB)
	PongWait        time.Duration // read deadline refreshed by pongs (default 60s)
	PingInterval    time.Duration // must be < PongWait (default 50s)
	WriteWait       time.Duration // per-write deadline (default 10s)
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 16
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 4 << 10
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 50 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	return o
}

// inbound is the wire form of client→server control messages.
type inbound struct {
	Type      string   `json:"type"`
	PartnerID string   `json:"partner_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	OrderID   string   `json:"order_id"`
	Status    string   `json:"status"`
}

// Client→server message types.
const (
	msgConnect           = "connect"
	msgLocationSample    = "location_sample"
	msgOrderStatusUpdate = "order_status_update"
)

// Session is one live bidirectional channel. It decodes inbound control
// messages, forwards them to the location and order services, and pushes
// hub events out through a buffered writer goroutine.
//
// Runtime-only: sessions are never persisted.
type Session struct {
	id        string
	hub       *Hub
	conn      Conn
	locations LocationIngestor
	orders    OrderTransitioner
	opts      Options
	log       zerolog.Logger

	state atomic.Int32

	mu        sync.Mutex
	partnerID string

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession wraps an accepted transport connection in a Connecting session.
// Call Run to start the read/write pumps.
func NewSession(id string, h *Hub, conn Conn, locations LocationIngestor, orders OrderTransitioner, opts Options, log zerolog.Logger) *Session {
	opts = opts.withDefaults()
	return &Session{
		id:        id,
		hub:       h,
		conn:      conn,
		locations: locations,
		orders:    orders,
		opts:      opts,
		log:       log.With().Str("component", "session").Str("session", id).Logger(),
		send:      make(chan []byte, opts.SendBuffer),
		done:      make(chan struct{}),
	}
}

// ID returns the session's identifier (unique per connection).
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// PartnerID returns the bound partner identity, or "" while unbound.
func (s *Session) PartnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.partnerID
}

// Run drives the session until the transport closes, then unregisters it.
// It blocks; callers run it once per connection.
func (s *Session) Run(ctx context.Context) {
	go s.writePump()
	s.readPump(ctx)
	s.Close()
}

// Push enqueues a pre-serialized event for delivery. It reports false when
// the event was dropped: the session is not open, or its outbound buffer is
// full. Push never blocks.
func (s *Session) Push(payload []byte) bool {
	if s.State() != StateOpen {
		return false
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// Close moves the session to Closed, tears down the transport, and removes
// the session from the hub. Safe to call multiple times and from any
// goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		close(s.done)
		_ = s.conn.Close()
		s.hub.Unregister(s)
		s.log.Debug().Msg("session closed")
	})
}

// readPump consumes inbound frames until the transport errors out. Malformed
// payloads are logged and dropped; they never close the session.
func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(s.opts.MaxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("transport closed unexpectedly")
			}
			return
		}
		s.handleMessage(ctx, payload)
	}
}

// handleMessage decodes and dispatches one inbound control message.
func (s *Session) handleMessage(ctx context.Context, payload []byte) {
	var msg inbound
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.log.Warn().Err(err).Msg("malformed channel message dropped")
		return
	}

	switch msg.Type {
	case msgConnect:
		s.handleConnect(msg)
	case msgLocationSample:
		s.handleLocationSample(ctx, msg)
	case msgOrderStatusUpdate:
		s.handleOrderStatusUpdate(ctx, msg)
	default:
		s.log.Warn().Str("type", msg.Type).Msg("unknown channel message dropped")
	}
}

// handleConnect binds the session to a partner identity and registers it
// with the hub. A repeated connect for the same partner is an idempotent
// rebind; a connect for a different partner moves the binding.
func (s *Session) handleConnect(msg inbound) {
	if msg.PartnerID == "" {
		s.log.Warn().Msg("connect without partner_id dropped")
		return
	}
	if s.State() == StateClosed {
		return
	}

	s.mu.Lock()
	prev := s.partnerID
	s.partnerID = msg.PartnerID
	s.mu.Unlock()

	if prev != "" && prev != msg.PartnerID {
		// Rebinding to a different identity: drop the old registry entry
		// first so the partner does not keep a dangling session.
		s.hub.unbind(prev, s)
	}

	s.state.CompareAndSwap(int32(StateConnecting), int32(StateOpen))
	s.hub.Register(msg.PartnerID, s)
	s.log.Info().Str("partner_id", msg.PartnerID).Msg("session bound")
}

// handleLocationSample forwards an inbound sample to the ingest path, which
// persists it and republishes the update through the hub.
func (s *Session) handleLocationSample(ctx context.Context, msg inbound) {
	if s.State() != StateOpen {
		s.log.Warn().Msg("location sample before connect dropped")
		return
	}
	if msg.Latitude == nil || msg.Longitude == nil {
		s.log.Warn().Msg("location sample missing coordinates dropped")
		return
	}
	if _, err := s.locations.Ingest(ctx, s.PartnerID(), *msg.Latitude, *msg.Longitude); err != nil {
		s.log.Warn().Err(err).Msg("channel location sample rejected")
	}
}

// handleOrderStatusUpdate forwards an inbound transition request to the
// order state machine. Rejections are logged; the session stays open and the
// client learns the outcome from the absence of a status event.
func (s *Session) handleOrderStatusUpdate(ctx context.Context, msg inbound) {
	if s.State() != StateOpen {
		s.log.Warn().Msg("order update before connect dropped")
		return
	}
	if msg.OrderID == "" || msg.Status == "" {
		s.log.Warn().Msg("order update missing fields dropped")
		return
	}
	if _, err := s.orders.Transition(ctx, msg.OrderID, domain.OrderStatus(msg.Status), s.PartnerID()); err != nil {
		s.log.Warn().Err(err).Str("order_id", msg.OrderID).Msg("channel order update rejected")
	}
}

// writePump serializes all transport writes: queued events and keepalive
// pings. It exits when the session closes or a write fails.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
