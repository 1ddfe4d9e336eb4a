// Broadcast hub: the single shared mutable structure in the realtime core.
//
// The registry maps partner identity to at most one live session. All
// mutation goes through Register/Unregister/Publish; the mutex serializes
// them so a publish never iterates the table while a connect or disconnect
// is rewriting it.
package hub

import (
	"sync"

	"github.com/rs/zerolog"
)

// Hub is a process-local registry of open channel sessions keyed by partner
// identity. It is safe for concurrent use.
//
// Registration is last-connect-wins: a partner reconnecting from a new
// device (or after a network blip) evicts and closes the stale session, so
// events stop leaking to a dead socket.
type Hub struct {
	log zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// New constructs an empty Hub.
func New(log zerolog.Logger) *Hub {
	return &Hub{
		log:      log.With().Str("component", "hub").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Register binds a session to a partner identity. If another session is
// already registered for the same partner it is closed and replaced; the
// registration itself never fails.
//
// Re-registering the same session (an idempotent rebind after a duplicate
// connect message) is a no-op.
func (h *Hub) Register(partnerID string, s *Session) {
	h.mu.Lock()
	prev := h.sessions[partnerID]
	if prev == s {
		h.mu.Unlock()
		return
	}
	h.sessions[partnerID] = s
	n := len(h.sessions)
	h.mu.Unlock()

	sessionsGauge.Set(float64(n))

	if prev != nil {
		evictedSessions.Inc()
		h.log.Info().
			Str("partner_id", partnerID).
			Str("evicted_session", prev.ID()).
			Str("session", s.ID()).
			Msg("session evicted by newer connection")
		prev.Close()
	} else {
		h.log.Debug().Str("partner_id", partnerID).Str("session", s.ID()).Msg("session registered")
	}
}

// Unregister removes the session from the registry. It is idempotent: a
// session that is not currently registered (never bound, already removed,
// or already replaced by a newer connection) is left alone. The identity
// check matters for the replacement case: the evicted session's deferred
// unregister must not tear down its successor.
func (h *Hub) Unregister(s *Session) {
	partnerID := s.PartnerID()
	if partnerID == "" {
		return
	}

	h.mu.Lock()
	cur, ok := h.sessions[partnerID]
	if !ok || cur != s {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, partnerID)
	n := len(h.sessions)
	h.mu.Unlock()

	sessionsGauge.Set(float64(n))
	h.log.Debug().Str("partner_id", partnerID).Str("session", s.ID()).Msg("session unregistered")
}

// unbind drops the registry entry for partnerID when it still points at s.
// Used when a session rebinds to a different partner identity.
func (h *Hub) unbind(partnerID string, s *Session) {
	h.mu.Lock()
	if cur, ok := h.sessions[partnerID]; ok && cur == s {
		delete(h.sessions, partnerID)
	}
	n := len(h.sessions)
	h.mu.Unlock()
	sessionsGauge.Set(float64(n))
}

// Publish delivers the event to every session registered at the moment of
// the call. Sessions registered after Publish begins do not receive the
// event (snapshot-at-call semantics).
//
// Delivery is deliberately unscoped: every connected observer receives every
// event, trading fan-out efficiency for simplicity at small fleet sizes.
// A session that cannot accept the event right now drops it.
func (h *Hub) Publish(e Event) {
	payload, err := encode(e)
	if err != nil {
		h.log.Error().Err(err).Str("kind", e.Kind()).Msg("encode event")
		return
	}

	h.mu.Lock()
	snapshot := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		snapshot = append(snapshot, s)
	}
	h.mu.Unlock()

	publishedEvents.WithLabelValues(e.Kind()).Inc()

	for _, s := range snapshot {
		if !s.Push(payload) {
			droppedEvents.WithLabelValues(e.Kind()).Inc()
		}
	}
}

// Len reports the number of currently registered sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}
