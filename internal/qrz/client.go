package qrz

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/qrz-gateway/internal/config"
	"github.com/JakeFAU/qrz-gateway/internal/metrics"
)

const userAgent = "qrz-gateway/1.0"

// Client performs authenticated lookups against the registry.
type Client struct {
	baseURL string
	safeURL string
	user    string
	pass    config.Secret
	http    *resty.Client
	logger  *zap.Logger
}

// NewClient builds a Client for the given registry settings. No retries are
// configured; a zero timeout keeps the transport default.
func NewClient(cfg config.QRZConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := resty.New().
		SetLogger(logger.Sugar()).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/xml, text/xml")
	if cfg.Timeout() > 0 {
		rc.SetTimeout(cfg.Timeout())
	}
	return &Client{
		baseURL: cfg.BaseURL,
		safeURL: redactURL(cfg.BaseURL),
		user:    cfg.User,
		pass:    cfg.Pass,
		http:    rc,
		logger:  logger,
	}
}

// Endpoint returns the base URL with any userinfo and query removed.
func (c *Client) Endpoint() string {
	return c.safeURL
}

// Fetch queries the registry for callsign and decodes the reply.
func (c *Client) Fetch(ctx context.Context, callsign string) (*Payload, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"username": c.user,
			"password": c.pass.Reveal(),
			"callsign": callsign,
		}).
		Get(c.baseURL)

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	metrics.ObserveUpstream(status, time.Since(start))

	if err != nil {
		return nil, unavailable("request failed", status, c.scrub(err))
	}
	if !resp.IsSuccess() {
		return nil, unavailable("unexpected status", status, nil)
	}

	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, unavailable("empty response body", status, nil)
	}

	payload, err := decodePayload(body)
	if err != nil {
		return nil, malformed(err)
	}
	c.logger.Debug("upstream reply decoded",
		zap.String("callsign", callsign),
		zap.Int("status", status),
		zap.Int("records", len(payload.Callsigns)),
	)
	return payload, nil
}

// scrub swaps the request URL, which carries the password in its query,
// for the bare base URL.
func (c *Client) scrub(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = &url.Error{Op: urlErr.Op, URL: c.safeURL, Err: urlErr.Err}
	}
	if pass := c.pass.Reveal(); pass != "" && strings.Contains(err.Error(), pass) {
		return errors.New(strings.ReplaceAll(err.Error(), pass, c.pass.String()))
	}
	return err
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "upstream"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
