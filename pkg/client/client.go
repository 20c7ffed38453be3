// Package client provides the CoinMarketCap public API client: typed calls
// for every endpoint, envelope decoding and transparent ticker pagination.
//
// No call returns a Go error. Every outcome, including transport and decode
// failures, is reported in-band through Response.Success and Response.Err.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/cmc-client/pkg/logging"
	"github.com/Sternrassler/cmc-client/pkg/metrics"
	"github.com/Sternrassler/cmc-client/pkg/pagination"
	"github.com/Sternrassler/cmc-client/pkg/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for CMC client operations.
var (
	factory = promauto.With(metrics.Registry)

	cmcRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cmc_requests_total",
		Help: "Total CMC requests by endpoint and status",
	}, []string{"endpoint", "status"})

	cmcRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cmc_request_duration_seconds",
		Help:    "CMC request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	cmcErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cmc_errors_total",
		Help: "Total failed CMC responses by error class",
	}, []string{"class"})
)

// Client is the CoinMarketCap API client. It is safe for concurrent use;
// calls share nothing but the underlying *http.Client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API (scheme and host, no version).
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP round trip.
	Timeout time.Duration

	// PageLimit is the page size used when collecting all tickers.
	// The API serves at most 100 tickers per call.
	PageLimit int

	// MaxPages bounds the number of pages one GetAllTickers call may fetch.
	MaxPages int

	// Logger overrides the component logger (optional).
	Logger *zerolog.Logger
}

// DefaultConfig returns the configuration for the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   request.DefaultBaseURL,
		UserAgent: "cmc-client/1.0",
		Timeout:   30 * time.Second,
		PageLimit: request.DefaultLimit,
		MaxPages:  pagination.DefaultConfig().MaxPages,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.PageLimit < 1 || cfg.PageLimit > request.DefaultLimit {
		return nil, fmt.Errorf("page_limit must be between 1 and %d (got %d)", request.DefaultLimit, cfg.PageLimit)
	}

	if cfg.MaxPages < 1 {
		return nil, fmt.Errorf("max_pages must be >= 1 (got %d)", cfg.MaxPages)
	}

	logger := logging.NewLogger("cmc-client")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// execute performs one GET for settings and decodes the envelope. It never
// fails: transport and decode problems become failed envelopes.
func execute[T any](ctx context.Context, c *Client, settings request.Settings) *Response[T] {
	if settings.BaseURL == "" {
		settings = settings.WithBaseURL(c.config.BaseURL)
	}
	endpoint := settings.Endpoint.String()
	target := settings.URL()

	startTime := time.Now()
	defer func() {
		cmcRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure[T](c, endpoint, ErrorClassTransport, 0, describeTransportError("create request", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", target).
		Msg("Executing CMC request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure[T](c, endpoint, ErrorClassTransport, 0, describeTransportError("send request", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure[T](c, endpoint, ErrorClassTransport, resp.StatusCode, describeTransportError("read body", err))
	}

	var out Response[T]
	if err := json.Unmarshal(body, &out); err != nil {
		msg := describeDecodeError(err, body)
		if !isSuccessStatus(resp.StatusCode) {
			msg = statusMessage(resp.StatusCode, msg)
		}
		return failure[T](c, endpoint, ErrorClassDecode, resp.StatusCode, msg)
	}
	out.StatusCode = resp.StatusCode

	if !isSuccessStatus(resp.StatusCode) {
		out.prefixStatus(resp.StatusCode)
	}

	cmcRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if !out.Success() {
		out.Class = ErrorClassDomain
		cmcErrorsTotal.WithLabelValues(string(out.Class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(out.Class)).
			Str("error", out.Metadata.ErrorMessage()).
			Msg("CMC request error")
	}

	return &out
}

// failure builds a synthetic failed envelope and records it.
func failure[T any](c *Client, endpoint string, class ErrorClass, status int, msg string) *Response[T] {
	cmcRequestsTotal.WithLabelValues(endpoint, string(class)+"_error").Inc()
	cmcErrorsTotal.WithLabelValues(string(class)).Inc()

	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("status", status).
		Str("error_class", string(class)).
		Msg("CMC request failed")

	return newFailedResponse[T](class, status, msg)
}

func isSuccessStatus(code int) bool {
	return code >= 200 && code <= 299
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetLogger replaces the component logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}
