package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Forwarder is the ingest sink: it POSTs each fix to the partner backend's
// location endpoint with a bounded-timeout HTTP client.
type Forwarder struct {
	// BaseURL is the backend root, e.g. "http://localhost:8080".
	BaseURL string
	// Token is the partner's bearer token.
	Token string
	// Client defaults to a 10s-timeout client when nil.
	Client *http.Client

	Log zerolog.Logger
}

type ingestRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (f *Forwarder) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Accept posts the fix to POST /api/v1/partner/location. A non-2xx reply is
// an error; the sampler logs it and moves on to the next cycle.
func (f *Forwarder) Accept(ctx context.Context, fix Fix) error {
	body, err := json.Marshal(ingestRequest{Latitude: fix.Latitude, Longitude: fix.Longitude})
	if err != nil {
		return fmt.Errorf("marshal fix: %w", err)
	}

	url := f.BaseURL + "/api/v1/partner/location"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ingest rejected fix: status %d", resp.StatusCode)
	}
	f.Log.Debug().Float64("lat", fix.Latitude).Float64("lng", fix.Longitude).Msg("fix forwarded")
	return nil
}
