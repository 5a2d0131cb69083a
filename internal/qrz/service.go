package qrz

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/qrz-gateway/internal/clock/system"
	"github.com/JakeFAU/qrz-gateway/internal/metrics"
)

// Fetcher retrieves a decoded registry reply for a callsign.
type Fetcher interface {
	Fetch(ctx context.Context, callsign string) (*Payload, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Service performs callsign lookups.
type Service struct {
	fetcher Fetcher
	clock   Clock
	logger  *zap.Logger
}

// NewService wires a Fetcher into a Service timed by the system clock.
func NewService(fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, clock: system.New(), logger: logger}
}

// WithClock replaces the clock used to time lookups.
func (s *Service) WithClock(clock Clock) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Normalize trims and uppercases a callsign.
func Normalize(callsign string) string {
	return strings.ToUpper(strings.TrimSpace(callsign))
}

// Lookup fetches and maps the record for callsign. Exactly one upstream
// call is made.
func (s *Service) Lookup(ctx context.Context, callsign string) (Record, error) {
	normalized := Normalize(callsign)
	start := s.clock.Now()

	var rec Record
	payload, err := s.fetcher.Fetch(ctx, normalized)
	if err == nil {
		rec, err = MapRecord(payload)
	}

	elapsed := s.clock.Now().Sub(start)
	outcome := Outcome(err)
	metrics.ObserveLookup(outcome, elapsed)

	fields := []zap.Field{
		zap.String("callsign", normalized),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	}
	switch {
	case err == nil:
		if rec.Call != normalized {
			fields = append(fields, zap.String("returned_call", rec.Call))
		}
		s.logger.Info("lookup completed", fields...)
	case errors.Is(err, ErrRecordNotFound):
		if upstreamErr := payload.UpstreamError(); upstreamErr != "" {
			fields = append(fields, zap.String("upstream_error", upstreamErr))
		}
		s.logger.Info("lookup found no record", append(fields, zap.Error(err))...)
	default:
		s.logger.Warn("lookup failed", append(fields, zap.Error(err))...)
	}
	return rec, err
}
