package geo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// scriptProvider returns queued responses in order, repeating the last one.
type scriptProvider struct {
	mu    sync.Mutex
	fixes []Fix
	errs  []error
	calls int
}

func (p *scriptProvider) Position(_ context.Context) (Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	if i >= len(p.fixes) {
		i = len(p.fixes) - 1
	}
	p.calls++
	return p.fixes[i], p.errs[i]
}

func (p *scriptProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// chanSink delivers accepted fixes to a channel.
type chanSink struct {
	ch  chan Fix
	err error
}

func (s *chanSink) Accept(_ context.Context, f Fix) error {
	if s.err != nil {
		return s.err
	}
	s.ch <- f
	return nil
}

func waitFix(t *testing.T, ch chan Fix) Fix {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatalf("no fix delivered in time")
		return Fix{}
	}
}

func TestSampler_DeliversToAllSinks(t *testing.T) {
	provider := &scriptProvider{
		fixes: []Fix{{Latitude: 12.97, Longitude: 77.59}},
		errs:  []error{nil},
	}
	a := &chanSink{ch: make(chan Fix, 8)}
	b := &chanSink{ch: make(chan Fix, 8)}

	s := NewSampler(provider, []Sink{a, b}, Options{Interval: time.Hour}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	fa := waitFix(t, a.ch)
	fb := waitFix(t, b.ch)
	if fa.Latitude != 12.97 || fb.Latitude != 12.97 {
		t.Fatalf("sinks got %v and %v", fa, fb)
	}
	if fa.CapturedAt.IsZero() {
		t.Fatalf("fix not timestamped")
	}
}

func TestSampler_FailingSinkDoesNotBlockOthers(t *testing.T) {
	provider := &scriptProvider{
		fixes: []Fix{{Latitude: 1, Longitude: 2}},
		errs:  []error{nil},
	}
	bad := &chanSink{ch: make(chan Fix), err: ErrUnavailable}
	good := &chanSink{ch: make(chan Fix, 8)}

	s := NewSampler(provider, []Sink{bad, good}, Options{Interval: time.Hour}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	if f := waitFix(t, good.ch); f.Latitude != 1 {
		t.Fatalf("good sink got %v", f)
	}
}

func TestSampler_KeepsCadenceThroughTransientFailures(t *testing.T) {
	provider := &scriptProvider{
		fixes: []Fix{{}, {}, {Latitude: 5, Longitude: 6}},
		errs:  []error{ErrUnavailable, ErrTimeout, nil},
	}
	sink := &chanSink{ch: make(chan Fix, 8)}

	s := NewSampler(provider, []Sink{sink}, Options{Interval: 10 * time.Millisecond}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	if f := waitFix(t, sink.ch); f.Latitude != 5 {
		t.Fatalf("fix after retries = %v", f)
	}
	if provider.callCount() < 3 {
		t.Fatalf("calls = %d, want at least 3", provider.callCount())
	}
}

func TestSampler_PermissionDeniedStopsScheduling(t *testing.T) {
	provider := &scriptProvider{
		fixes: []Fix{{}},
		errs:  []error{ErrPermissionDenied},
	}
	sink := &chanSink{ch: make(chan Fix, 8)}

	s := NewSampler(provider, []Sink{sink}, Options{Interval: 5 * time.Millisecond}, zerolog.Nop())
	s.Start(context.Background())

	time.Sleep(50 * time.Millisecond)
	if got := provider.callCount(); got != 1 {
		t.Fatalf("calls after denial = %d, want 1", got)
	}
	select {
	case f := <-sink.ch:
		t.Fatalf("unexpected fix %v after denial", f)
	default:
	}

	// Start resumes scheduling.
	provider.mu.Lock()
	provider.fixes = []Fix{{Latitude: 9, Longitude: 9}}
	provider.errs = []error{nil}
	provider.calls = 0
	provider.mu.Unlock()

	s.Start(context.Background())
	defer s.Stop()
	if f := waitFix(t, sink.ch); f.Latitude != 9 {
		t.Fatalf("fix after restart = %v", f)
	}
}

func TestSampler_DiscardsStaleFix(t *testing.T) {
	provider := &scriptProvider{
		fixes: []Fix{{Latitude: 1, Longitude: 1, CapturedAt: time.Now().Add(-time.Minute)}},
		errs:  []error{nil},
	}
	sink := &chanSink{ch: make(chan Fix, 8)}

	s := NewSampler(provider, []Sink{sink}, Options{Interval: time.Hour, MaxFixAge: time.Second}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	select {
	case f := <-sink.ch:
		t.Fatalf("stale fix delivered: %v", f)
	default:
	}
}

func TestSampler_StopHaltsLoop(t *testing.T) {
	provider := &scriptProvider{
		fixes: []Fix{{Latitude: 1, Longitude: 1}},
		errs:  []error{nil},
	}
	sink := &chanSink{ch: make(chan Fix, 64)}

	s := NewSampler(provider, []Sink{sink}, Options{Interval: 5 * time.Millisecond}, zerolog.Nop())
	s.Start(context.Background())
	waitFix(t, sink.ch)
	s.Stop()

	calls := provider.callCount()
	time.Sleep(50 * time.Millisecond)
	if provider.callCount() != calls {
		t.Fatalf("provider still sampled after Stop")
	}

	// Stop is idempotent.
	s.Stop()
}
