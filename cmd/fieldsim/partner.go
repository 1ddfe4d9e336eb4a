package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jaswdr/faker"
	"github.com/rs/zerolog"

	"github.com/swiftroute/partner-backend/internal/geo"
)

// Movement starts near the Bengaluru city center, matching the seeded demo
// data, and random-walks from there.
const (
	startLat = 12.9716
	startLng = 77.5946
	// maxStepDeg is roughly 150 m per report.
	maxStepDeg = 0.0015
)

const demoPassword = "password123"

// simPartner is one simulated courier: an authenticated HTTP identity, a
// channel connection, and a position sampler feeding both transports.
type simPartner struct {
	baseURL  string
	ordinal  int
	interval time.Duration
	log      zerolog.Logger
}

type authResponse struct {
	Token   string `json:"token"`
	Partner struct {
		ID string `json:"id"`
	} `json:"partner"`
}

func (p *simPartner) run(ctx context.Context) error {
	token, partnerID, err := p.authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	p.log.Info().Str("partner_id", partnerID).Msg("authenticated")

	conn, err := p.dialChannel(ctx)
	if err != nil {
		return fmt.Errorf("dial channel: %w", err)
	}
	defer conn.Close()

	ch := &channelSink{conn: conn}
	if err := ch.writeJSON(map[string]any{"type": "connect", "partner_id": partnerID}); err != nil {
		return fmt.Errorf("bind channel: %w", err)
	}

	// Drain server events so control frames keep flowing; the payloads are
	// only logged at debug.
	go func() {
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			p.log.Debug().RawJSON("event", payload).Msg("channel event")
		}
	}()

	walker := &randomWalk{lat: startLat, lng: startLng}
	sampler := geo.NewSampler(walker, []geo.Sink{
		&geo.Forwarder{BaseURL: p.baseURL, Token: token, Log: p.log},
		ch,
	}, geo.Options{Interval: p.interval}, p.log)

	sampler.Start(ctx)
	<-ctx.Done()
	sampler.Stop()
	return nil
}

// authenticate logs in with the seeded demo account for this ordinal, or
// registers a fresh account when the demo account does not exist.
func (p *simPartner) authenticate(ctx context.Context) (token, partnerID string, err error) {
	email := fmt.Sprintf("partner%d@swiftroute.demo", p.ordinal)
	auth, err := p.postJSON(ctx, "/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": demoPassword,
	})
	if err == nil {
		return auth.Token, auth.Partner.ID, nil
	}

	fake := faker.New()
	p.log.Info().Err(err).Msg("demo login failed, registering a fresh account")
	auth, err = p.postJSON(ctx, "/api/v1/auth/register", map[string]any{
		"name":     fake.Person().Name(),
		"email":    fmt.Sprintf("sim%d-%d@swiftroute.demo", p.ordinal, time.Now().UnixNano()),
		"phone":    fake.Phone().E164Number(),
		"password": demoPassword,
	})
	if err != nil {
		return "", "", err
	}
	return auth.Token, auth.Partner.ID, nil
}

func (p *simPartner) postJSON(ctx context.Context, path string, body map[string]any) (*authResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (p *simPartner) dialChannel(ctx context.Context) (*websocket.Conn, error) {
	wsURL := strings.Replace(p.baseURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	return conn, err
}

// randomWalk produces a jittered position stream anchored to the last fix.
type randomWalk struct {
	mu  sync.Mutex
	lat float64
	lng float64
}

// Position implements geo.Provider.
func (w *randomWalk) Position(context.Context) (geo.Fix, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lat += (rand.Float64()*2 - 1) * maxStepDeg
	w.lng += (rand.Float64()*2 - 1) * maxStepDeg
	return geo.Fix{Latitude: w.lat, Longitude: w.lng, CapturedAt: time.Now()}, nil
}

// channelSink forwards fixes over the realtime channel as location samples.
type channelSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Accept implements geo.Sink.
func (c *channelSink) Accept(_ context.Context, f geo.Fix) error {
	return c.writeJSON(map[string]any{
		"type":      "location_sample",
		"latitude":  f.Latitude,
		"longitude": f.Longitude,
	})
}

func (c *channelSink) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}
