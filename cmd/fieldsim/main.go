// Command fieldsim drives a simulated delivery fleet against a running
// backend. Each simulated partner logs in (demo accounts from seeding, or a
// freshly registered account), opens the realtime channel, and reports a
// random-walk position stream through both the REST ingest endpoint and the
// channel, exactly like the mobile app does.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swiftroute/partner-backend/internal/sysutil"
)

func main() {
	var (
		baseURL  = flag.String("base-url", "http://localhost:8080", "backend base URL")
		partners = flag.Int("partners", 3, "number of simulated partners")
		interval = flag.Duration("interval", 5*time.Second, "seconds between position reports")
		logLevel = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	sysutil.SetLogLevel(*logLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base_url", *baseURL).
		Int("partners", *partners).
		Dur("interval", *interval).
		Msg("starting field simulation")

	var wg sync.WaitGroup
	for i := 1; i <= *partners; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p := &simPartner{
				baseURL:  *baseURL,
				ordinal:  n,
				interval: *interval,
				log:      log.With().Int("partner", n).Logger(),
			}
			if err := p.run(ctx); err != nil && ctx.Err() == nil {
				p.log.Error().Err(err).Msg("simulated partner stopped")
			}
		}(i)
	}

	wg.Wait()
	log.Info().Msg("field simulation stopped")
}
