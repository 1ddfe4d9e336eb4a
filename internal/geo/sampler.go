// Package geo implements the client-side sampling loop used by simulated
// partner devices: obtain a position fix at a fixed cadence, then fan each
// fix out to independent sinks (the ingest endpoint, the live channel).
package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Classified sampling failures. Providers return these (or wrap them) so the
// sampler can decide whether to keep scheduling.
var (
	// ErrPermissionDenied means the platform refused location capability.
	// The sampler stops scheduling until Start is called again.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrTimeout means no fix arrived within the bounded wait.
	ErrTimeout = errors.New("position request timed out")

	// ErrUnavailable means the position source failed transiently.
	ErrUnavailable = errors.New("position unavailable")
)

// Fix is one observed device position.
type Fix struct {
	Latitude   float64
	Longitude  float64
	CapturedAt time.Time
}

// Provider produces the current device position. Implementations should
// honor ctx cancellation; the sampler bounds each call with its Timeout.
type Provider interface {
	Position(ctx context.Context) (Fix, error)
}

// Sink consumes successful fixes. Sinks are independent: each fix is handed
// to every sink concurrently and one sink's failure or latency never blocks
// another's delivery.
type Sink interface {
	Accept(ctx context.Context, f Fix) error
}

// Options tunes the sampling schedule. Zero values fall back to the
// defaults below.
type Options struct {
	// Interval is the fixed cadence between samples. A failed sample does
	// not reset the schedule. Default 30s.
	Interval time.Duration

	// Timeout bounds each Position call. Default 10s.
	Timeout time.Duration

	// MaxFixAge is the staleness tolerance: cached fixes older than this
	// are rejected as ErrUnavailable. Default 60s.
	MaxFixAge time.Duration
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxFixAge <= 0 {
		o.MaxFixAge = 60 * time.Second
	}
	return o
}

// Sampler drives the sampling loop. Start begins scheduling; Stop halts it.
// A sampler that stopped itself after a permission denial can be resumed by
// calling Start again.
type Sampler struct {
	provider Provider
	sinks    []Sink
	opts     Options
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSampler constructs a Sampler over the given provider and sinks.
func NewSampler(p Provider, sinks []Sink, opts Options, log zerolog.Logger) *Sampler {
	return &Sampler{
		provider: p,
		sinks:    sinks,
		opts:     opts.withDefaults(),
		log:      log.With().Str("component", "geosampler").Logger(),
	}
}

// Start begins the sampling loop: one immediate sample, then one per
// interval. Calling Start on a running sampler restarts it. The loop ends
// when ctx is cancelled, Stop is called, or the provider reports a
// permission denial.
func (s *Sampler) Start(ctx context.Context) {
	s.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(runCtx, done)
}

// Stop halts the sampling loop and waits for it to exit. Safe to call on a
// sampler that is not running.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Sampler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	if !s.sampleOnce(ctx) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.sampleOnce(ctx) {
				return
			}
		}
	}
}

// sampleOnce takes one sample and fans it out. It returns false only when
// scheduling must stop (permission denied); transient failures keep the
// schedule running.
func (s *Sampler) sampleOnce(ctx context.Context) bool {
	sampleCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	fix, err := s.provider.Position(sampleCtx)
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, ErrPermissionDenied):
		s.log.Warn().Msg("location permission denied, sampling paused until restarted")
		return false
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout):
		s.log.Debug().Msg("position request timed out")
		return true
	default:
		s.log.Debug().Err(err).Msg("position unavailable")
		return true
	}

	if fix.CapturedAt.IsZero() {
		fix.CapturedAt = time.Now().UTC()
	} else if age := time.Since(fix.CapturedAt); age > s.opts.MaxFixAge {
		s.log.Debug().Dur("age", age).Msg("discarding stale cached fix")
		return true
	}

	for _, sink := range s.sinks {
		go func(sink Sink) {
			if err := sink.Accept(ctx, fix); err != nil {
				s.log.Debug().Err(err).Msg("sink rejected fix")
			}
		}(sink)
	}
	return true
}
