// Package testutil provides testing utilities for the CMC client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FixtureTimestamp is the metadata timestamp used by generated envelopes.
const FixtureTimestamp = 1525137187

// MockCMCResponse defines the behavior for a mock CMC endpoint response.
type MockCMCResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCMC is a configurable mock CoinMarketCap server for testing.
type MockCMC struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount     int
	RequestedQueries []string
	LastUserAgent    string
}

// NewMockCMC creates a new mock CMC server.
func NewMockCMC() *MockCMC {
	mock := &MockCMC{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.RequestedQueries = append(mock.RequestedQueries, r.URL.RawQuery)
		mock.LastUserAgent = r.Header.Get("User-Agent")
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		writeJSON(w, http.StatusNotFound, ErrorEnvelope("id not found"))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCMC) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCMC) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCMC) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.RequestedQueries = nil
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCMC) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockCMC) SetResponse(path string, resp MockCMCResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetTickerUniverse serves "/v2/ticker/" over total generated tickers,
// honoring start and limit like the real endpoint. Requests whose start
// position equals failAt get a 404 error envelope (0 disables).
func (m *MockCMC) SetTickerUniverse(total, failAt int) {
	m.SetHandler("/v2/ticker/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		start := intParam(q, "start", 1)
		limit := intParam(q, "limit", 100)

		if failAt != 0 && start == failAt {
			writeJSON(w, http.StatusNotFound, ErrorEnvelope("id not found"))
			return
		}

		converter := strings.ToUpper(q.Get("convert"))
		var items []string
		for rank := start; rank < start+limit && rank <= total; rank++ {
			items = append(items, fmt.Sprintf("%q: %s", strconv.Itoa(rank), TickerJSON(rank, converter)))
		}
		data := "{" + strings.Join(items, ", ") + "}"
		writeJSON(w, http.StatusOK, Envelope(data, total))
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCMC) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequestedQueries returns the raw query strings in request order.
func (m *MockCMC) GetRequestedQueries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.RequestedQueries...)
}

// Envelope wraps data in a successful envelope. count < 0 omits
// num_cryptocurrencies.
func Envelope(data string, count int) string {
	if count < 0 {
		return fmt.Sprintf(`{"data": %s, "metadata": {"timestamp": %d, "error": null}}`, data, FixtureTimestamp)
	}
	return fmt.Sprintf(`{"data": %s, "metadata": {"timestamp": %d, "num_cryptocurrencies": %d, "error": null}}`,
		data, FixtureTimestamp, count)
}

// ErrorEnvelope returns the envelope the API sends for failed calls.
func ErrorEnvelope(msg string) string {
	return fmt.Sprintf(`{"data": null, "metadata": {"timestamp": %d, "error": %q}}`, FixtureTimestamp, msg)
}

// TickerJSON returns a ticker of the given rank with a USD quote and, when
// converter is set, a second quote in that currency.
func TickerJSON(rank int, converter string) string {
	quote := func(price int) string {
		return fmt.Sprintf(`{"price": %d.5, "volume_24h": 1000, "market_cap": %d, "percent_change_1h": -0.1, "percent_change_24h": 1.2, "percent_change_7d": null}`,
			price, price*1000)
	}
	quotes := fmt.Sprintf(`"USD": %s`, quote(rank))
	if converter != "" && converter != "USD" {
		quotes += fmt.Sprintf(`, %q: %s`, converter, quote(rank*2))
	}
	return fmt.Sprintf(`{"id": %d, "name": "Coin %d", "symbol": "C%d", "website_slug": "coin-%d", "rank": %d, "circulating_supply": 17000000, "total_supply": 17000000, "max_supply": null, "quotes": {%s}, "last_updated": 1525137271}`,
		rank, rank, rank, rank, rank, quotes)
}

// NewHealthyResponse creates a standard 200 OK response carrying body.
func NewHealthyResponse(body string) MockCMCResponse {
	return MockCMCResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewNotFoundResponse creates the 404 the API returns for unknown ids.
func NewNotFoundResponse() MockCMCResponse {
	return MockCMCResponse{
		StatusCode: http.StatusNotFound,
		Body:       ErrorEnvelope("id not found"),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a 500 with a non-JSON body.
func NewServerErrorResponse() MockCMCResponse {
	return MockCMCResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       "<html>Internal Server Error</html>",
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func intParam(q url.Values, name string, def int) int {
	v, err := strconv.Atoi(q.Get(name))
	if err != nil {
		return def
	}
	return v
}
