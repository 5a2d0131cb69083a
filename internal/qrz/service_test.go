package qrz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/qrz-gateway/internal/config"
)

// mockFetcher mocks the Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

// Fetch satisfies the Fetcher interface for the mock.
func (m *mockFetcher) Fetch(ctx context.Context, callsign string) (*Payload, error) {
	args := m.Called(ctx, callsign)
	payload, _ := args.Get(0).(*Payload)
	return payload, args.Error(1)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "W1AW", Normalize("w1aw"))
	require.Equal(t, "DL1ABC/P", Normalize("  dl1abc/p "))
}

func TestServiceLookupEndToEnd(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	var sent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		sent.Store(r.URL.Query().Get("callsign"))
		_, _ = w.Write([]byte(`<QRZDatabase><Callsign><call>W1AW</call><class>E</class></Callsign></QRZDatabase>`))
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	client := NewClient(config.QRZConfig{BaseURL: srv.URL, User: "n0call", Pass: testPassword}, logger)
	svc := NewService(client, logger)

	rec, err := svc.Lookup(context.Background(), "w1aw")
	require.NoError(t, err)
	require.Equal(t, Record{Call: "W1AW", LicenseClass: "E"}, rec)
	require.Equal(t, "W1AW", sent.Load())
	require.EqualValues(t, 1, hits.Load())

	completed := logs.FilterMessage("lookup completed").All()
	require.Len(t, completed, 1)
	require.Equal(t, "W1AW", completed[0].ContextMap()["callsign"])
	require.Equal(t, OutcomeOK, completed[0].ContextMap()["outcome"])
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			require.NotContains(t, toString(v), testPassword)
		}
	}
}

func TestServiceLookupUpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	svc := NewService(NewClient(config.QRZConfig{BaseURL: srv.URL, User: "u", Pass: testPassword}, logger), logger)

	_, err := svc.Lookup(context.Background(), "W1AW")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	require.NotErrorIs(t, err, ErrRecordNotFound)

	failed := logs.FilterMessage("lookup failed").All()
	require.Len(t, failed, 1)
	require.Equal(t, zapcore.WarnLevel, failed[0].Level)
	require.NotContains(t, failed[0].ContextMap()["error"], testPassword)
}

func TestServiceLookupNotFoundLogsUpstreamError(t *testing.T) {
	t.Parallel()

	payload := mustDecode(t, `<QRZDatabase><Session><Error>Not found: XX1XX</Error></Session></QRZDatabase>`)
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "XX1XX").Return(payload, nil).Once()
	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewService(fetcher, zap.New(core))

	_, err := svc.Lookup(context.Background(), "xx1xx")
	require.ErrorIs(t, err, ErrRecordNotFound)
	fetcher.AssertExpectations(t)

	entries := logs.FilterMessage("lookup found no record").All()
	require.Len(t, entries, 1)
	require.Equal(t, "Not found: XX1XX", entries[0].ContextMap()["upstream_error"])
}

func TestServiceLookupPropagatesFetchError(t *testing.T) {
	t.Parallel()

	boom := unavailable("request failed", 0, errors.New("dial tcp: connection refused"))
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "K1ABC").Return(nil, boom).Once()
	svc := NewService(fetcher, nil)

	rec, err := svc.Lookup(context.Background(), "K1ABC")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
	require.Equal(t, Record{}, rec)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestServiceLookupMissingCall(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "K1ABC").Return(mustDecode(t,
		`<QRZDatabase><Callsign><fname>JOHN</fname></Callsign></QRZDatabase>`), nil)
	svc := NewService(fetcher, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "K1ABC")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

// stepClock advances by step on every read.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestServiceLookupTimedByClock(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, "W1AW").Return(mustDecode(t,
		`<QRZDatabase><Callsign><call>W1AW</call></Callsign></QRZDatabase>`), nil)
	core, logs := observer.New(zapcore.InfoLevel)
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: 250 * time.Millisecond}
	svc := NewService(fetcher, zap.New(core)).WithClock(clk)

	_, err := svc.Lookup(context.Background(), "W1AW")
	require.NoError(t, err)

	entries := logs.FilterMessage("lookup completed").All()
	require.Len(t, entries, 1)
	require.Equal(t, 250*time.Millisecond, entries[0].ContextMap()["duration"])
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
