// Package services – phone OTP login
//
// The SMS provider is an external collaborator; this service only generates
// codes, hands them to an SMSSender, and checks them on verify. Codes are
// held in memory with a TTL and consumed on first successful verification.
package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SMSSender delivers a text message to a phone number. Production wires a
// real gateway; development uses LogSMSSender.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LogSMSSender writes the message to the log instead of sending it. Useful
// for development and tests.
type LogSMSSender struct {
	Log zerolog.Logger
}

// Send logs the message at info level.
func (s LogSMSSender) Send(_ context.Context, phone, message string) error {
	s.Log.Info().Str("phone", phone).Str("message", message).Msg("sms (log sender)")
	return nil
}

type otpEntry struct {
	code    string
	expires time.Time
}

// OTPStore keeps pending one-time codes in memory. A code is valid for TTL,
// replaced by a newer request, and consumed by a successful verification.
type OTPStore struct {
	// TTL bounds code lifetime; defaults to 5 minutes when zero.
	TTL time.Duration

	mu    sync.Mutex
	codes map[string]otpEntry
}

func (s *OTPStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 5 * time.Minute
	}
	return s.TTL
}

// Generate creates and records a 6-digit code for phone, returning the code
// so the caller can hand it to the SMS provider.
func (s *OTPStore) Generate(phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	s.mu.Lock()
	if s.codes == nil {
		s.codes = make(map[string]otpEntry)
	}
	s.codes[phone] = otpEntry{code: code, expires: time.Now().Add(s.ttl())}
	s.mu.Unlock()
	return code, nil
}

// Verify checks code against the pending entry for phone and consumes it on
// success. Returns ErrOTPExpired for a lapsed code and ErrOTPInvalid for a
// mismatch or missing entry.
func (s *OTPStore) Verify(phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.codes[phone]
	if !ok || entry.code != code {
		return ErrOTPInvalid
	}
	if time.Now().After(entry.expires) {
		delete(s.codes, phone)
		return ErrOTPExpired
	}
	delete(s.codes, phone)
	return nil
}
