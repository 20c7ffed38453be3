package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/cmc-client/internal/testutil"
	"github.com/Sternrassler/cmc-client/pkg/request"
	"github.com/rs/zerolog"
)

// newTestClient returns a client pointed at the mock server.
func newTestClient(t *testing.T, mock *testutil.MockCMC, modify ...func(*Config)) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.UserAgent = "TestApp/1.0.0"
	for _, m := range modify {
		m(&cfg)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			modify: func(*Config) {},
		},
		{
			name:        "empty base url",
			modify:      func(c *Config) { c.BaseURL = "" },
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name:        "unsupported scheme",
			modify:      func(c *Config) { c.BaseURL = "ftp://example.com" },
			expectError: true,
			errorMsg:    `base url must be http or https (got "ftp://example.com")`,
		},
		{
			name:        "empty user agent",
			modify:      func(c *Config) { c.UserAgent = "" },
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "zero timeout",
			modify:      func(c *Config) { c.Timeout = 0 },
			expectError: true,
			errorMsg:    "timeout must be > 0 (got 0s)",
		},
		{
			name:        "page limit too large",
			modify:      func(c *Config) { c.PageLimit = 101 },
			expectError: true,
			errorMsg:    "page_limit must be between 1 and 100 (got 101)",
		},
		{
			name:        "no page budget",
			modify:      func(c *Config) { c.MaxPages = 0 },
			expectError: true,
			errorMsg:    "max_pages must be >= 1 (got 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)

			client, err := New(cfg)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != request.DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, request.DefaultBaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.PageLimit != 100 {
		t.Errorf("PageLimit = %d, want 100", cfg.PageLimit)
	}
	if cfg.MaxPages != 500 {
		t.Errorf("MaxPages = %d, want 500", cfg.MaxPages)
	}
}

func TestGetCurrencies(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()

	mock.SetResponse("/v2/listings/", testutil.NewHealthyResponse(testutil.Envelope(
		`[{"id": 1, "name": "Bitcoin", "symbol": "BTC", "website_slug": "bitcoin"},
		  {"id": 2, "name": "Litecoin", "symbol": "LTC", "website_slug": "litecoin"}]`, 2)))

	client := newTestClient(t, mock)
	resp := client.GetCurrencies(context.Background())

	if !resp.Success() {
		t.Fatalf("Expected success, got %v", resp.Err())
	}
	if len(resp.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(resp.Data))
	}
	if resp.Data[1].WebsiteSlug != "litecoin" {
		t.Errorf("WebsiteSlug = %q, want %q", resp.Data[1].WebsiteSlug, "litecoin")
	}
	if resp.Metadata.Count() != 2 {
		t.Errorf("Count = %d, want 2", resp.Metadata.Count())
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if mock.LastUserAgent != "TestApp/1.0.0" {
		t.Errorf("User-Agent = %q, want %q", mock.LastUserAgent, "TestApp/1.0.0")
	}
}

func TestGetTickerByID(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()

	mock.SetHandler("/v2/ticker/1/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(testutil.Envelope(testutil.TickerJSON(1, r.URL.Query().Get("convert")), -1)))
	})

	client := newTestClient(t, mock)
	resp := client.GetTickerByID(context.Background(), 1, "EUR")

	if !resp.Success() {
		t.Fatalf("Expected success, got %v", resp.Err())
	}
	if got := mock.GetRequestedQueries(); len(got) != 1 || got[0] != "convert=EUR" {
		t.Errorf("queries = %v, want [convert=EUR]", got)
	}
	if resp.Data.Symbol != "C1" {
		t.Errorf("Symbol = %q, want %q", resp.Data.Symbol, "C1")
	}
	eur, ok := resp.Data.Quotes["EUR"]
	if !ok {
		t.Fatal("EUR quote missing")
	}
	if eur.Price.Decimal.String() != "2.5" {
		t.Errorf("EUR price = %s, want 2.5", eur.Price.Decimal)
	}
	if resp.Data.LastUpdated.Unix() != 1525137271 {
		t.Errorf("LastUpdated = %d, want 1525137271", resp.Data.LastUpdated.Unix())
	}
	if resp.Metadata.CryptocurrencyCount != nil {
		t.Error("Expected no cryptocurrency count")
	}
}

func TestGetTickerByID_NotFound(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()

	client := newTestClient(t, mock)
	resp := client.GetTickerByID(context.Background(), 999999, "")

	if resp.Success() {
		t.Fatal("Expected failure")
	}
	want := "HTTP Response - Status code: 404 Not Found. Message: id not found."
	if got := resp.Metadata.ErrorMessage(); got != want {
		t.Errorf("ErrorMessage = %q, want %q", got, want)
	}
	if resp.Data != nil {
		t.Error("Expected nil data")
	}

	var apiErr *Error
	if !errors.As(resp.Err(), &apiErr) {
		t.Fatalf("Err() = %T, want *Error", resp.Err())
	}
	if apiErr.Class != ErrorClassDomain {
		t.Errorf("Class = %q, want %q", apiErr.Class, ErrorClassDomain)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
}

func TestGetTickersInRange_Query(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		limit     int
		converter string
		want      string
	}{
		{name: "defaults", start: 0, limit: 100, want: ""},
		{name: "limit", start: 0, limit: 10, want: "limit=10"},
		{name: "start and limit", start: 101, limit: 10, want: "start=101&limit=10"},
		{name: "converter first", start: 0, limit: 10, converter: "EUR", want: "convert=EUR&limit=10"},
		{name: "all", start: 5, limit: 3, converter: "BTC", want: "convert=BTC&start=5&limit=3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCMC()
			defer mock.Close()
			mock.SetTickerUniverse(20, 0)

			client := newTestClient(t, mock)
			resp := client.GetTickersInRange(context.Background(), tt.start, tt.limit, tt.converter)

			if !resp.Success() {
				t.Fatalf("Expected success, got %v", resp.Err())
			}
			if got := mock.GetRequestedQueries()[0]; got != tt.want {
				t.Errorf("query = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTickersInRange_Order(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetTickerUniverse(50, 0)

	client := newTestClient(t, mock)
	resp := client.GetTickersInRange(context.Background(), 11, 5, "")

	want := []string{"11", "12", "13", "14", "15"}
	if got := resp.Data.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys = %v, want %v", got, want)
	}
	if resp.Metadata.Count() != 50 {
		t.Errorf("Count = %d, want 50", resp.Metadata.Count())
	}
}

func TestGetAllTickers(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		converter string
		queries   []string
	}{
		{
			name:    "single page",
			total:   80,
			queries: []string{""},
		},
		{
			name:    "three pages",
			total:   250,
			queries: []string{"", "start=101", "start=201"},
		},
		{
			name:      "three pages with converter",
			total:     201,
			converter: "EUR",
			queries:   []string{"convert=EUR", "convert=EUR&start=101", "convert=EUR&start=201"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCMC()
			defer mock.Close()
			mock.SetTickerUniverse(tt.total, 0)

			client := newTestClient(t, mock)
			resp := client.GetAllTickers(context.Background(), tt.converter)

			if !resp.Success() {
				t.Fatalf("Expected success, got %v", resp.Err())
			}
			if resp.Data.Len() != tt.total {
				t.Errorf("Len = %d, want %d", resp.Data.Len(), tt.total)
			}
			if got := mock.GetRequestedQueries(); strings.Join(got, "|") != strings.Join(tt.queries, "|") {
				t.Errorf("queries = %q, want %q", got, tt.queries)
			}
			keys := resp.Data.Keys()
			if keys[0] != "1" || keys[len(keys)-1] != resp.Data.Tickers()[len(keys)-1].Symbol[1:] {
				t.Errorf("Keys not in rank order: first %q last %q", keys[0], keys[len(keys)-1])
			}
		})
	}
}

func TestGetAllTickers_PageFailure(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetTickerUniverse(250, 201)

	client := newTestClient(t, mock)
	resp := client.GetAllTickers(context.Background(), "")

	if resp.Success() {
		t.Fatal("Expected failure")
	}
	want := "HTTP Response - Status code: 404 Not Found. Message: id not found."
	if got := resp.Metadata.ErrorMessage(); got != want {
		t.Errorf("ErrorMessage = %q, want %q", got, want)
	}
	if resp.Data.Len() != 0 {
		t.Errorf("Len = %d, want 0", resp.Data.Len())
	}
	if mock.GetRequestCount() != 3 {
		t.Errorf("RequestCount = %d, want 3", mock.GetRequestCount())
	}
}

func TestGetAllTickers_PageBudget(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetTickerUniverse(1000, 0)

	client := newTestClient(t, mock, func(c *Config) { c.MaxPages = 3 })
	resp := client.GetAllTickers(context.Background(), "")

	if resp.Success() {
		t.Fatal("Expected failure")
	}
	if resp.Class != ErrorClassPagination {
		t.Errorf("Class = %q, want %q", resp.Class, ErrorClassPagination)
	}
	if !strings.Contains(resp.Metadata.ErrorMessage(), "page budget exhausted") {
		t.Errorf("ErrorMessage = %q, want page budget message", resp.Metadata.ErrorMessage())
	}
	if mock.GetRequestCount() != 3 {
		t.Errorf("RequestCount = %d, want 3", mock.GetRequestCount())
	}
}

func TestGetGlobalData(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()

	mock.SetResponse("/v2/global/", testutil.NewHealthyResponse(testutil.Envelope(`{
		"active_cryptocurrencies": 1594,
		"active_markets": 10526,
		"bitcoin_percentage_of_market_cap": 37.65,
		"quotes": {"USD": {"total_market_cap": 435015399471.0, "total_volume_24h": 19195238763.0}},
		"last_updated": 1525137271
	}`, -1)))

	client := newTestClient(t, mock)
	resp := client.GetGlobalData(context.Background(), "")

	if !resp.Success() {
		t.Fatalf("Expected success, got %v", resp.Err())
	}
	if resp.Data.ActiveMarkets != 10526 {
		t.Errorf("ActiveMarkets = %d, want 10526", resp.Data.ActiveMarkets)
	}
	if resp.Data.BitcoinPercentage.String() != "37.65" {
		t.Errorf("BitcoinPercentage = %s, want 37.65", resp.Data.BitcoinPercentage)
	}
}

func TestDecodeFailure(t *testing.T) {
	tests := []struct {
		name       string
		response   testutil.MockCMCResponse
		wantPrefix string
		wantPart   string
	}{
		{
			name:       "malformed body",
			response:   testutil.NewHealthyResponse("not json"),
			wantPrefix: "Syntax error",
			wantPart:   "Received data: 'not json'.",
		},
		{
			name:       "schema mismatch",
			response:   testutil.NewHealthyResponse(`{"data": {"active_markets": "many"}, "metadata": null}`),
			wantPrefix: "Type error",
			wantPart:   "Path: 'data.active_markets'",
		},
		{
			name:       "bad timestamp",
			response:   testutil.NewHealthyResponse(`{"data": null, "metadata": {"timestamp": 1.5, "error": null}}`),
			wantPrefix: "Timestamp error",
			wantPart:   "1.5",
		},
		{
			name:       "server error page",
			response:   testutil.NewServerErrorResponse(),
			wantPrefix: "HTTP Response - Status code: 500 Internal Server Error. Message: Syntax error",
			wantPart:   "Received data: '<html>Internal Server Error</html>'.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockCMC()
			defer mock.Close()
			mock.SetResponse("/v2/global/", tt.response)

			client := newTestClient(t, mock)
			resp := client.GetGlobalData(context.Background(), "")

			if resp.Success() {
				t.Fatal("Expected failure")
			}
			if resp.Class != ErrorClassDecode {
				t.Errorf("Class = %q, want %q", resp.Class, ErrorClassDecode)
			}
			if resp.StatusCode != tt.response.StatusCode {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.response.StatusCode)
			}
			msg := resp.Metadata.ErrorMessage()
			if !strings.HasPrefix(msg, tt.wantPrefix) {
				t.Errorf("ErrorMessage = %q, want prefix %q", msg, tt.wantPrefix)
			}
			if !strings.Contains(msg, tt.wantPart) {
				t.Errorf("ErrorMessage = %q, want it to contain %q", msg, tt.wantPart)
			}
		})
	}
}

func TestDecodeFailure_TickerPagePath(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetResponse("/v2/ticker/", testutil.NewHealthyResponse(testutil.Envelope(
		`{"1": `+testutil.TickerJSON(1, "")+`, "1027": {"id": 1027, "rank": "two"}}`, 2)))

	client := newTestClient(t, mock)
	resp := client.GetTickersInRange(context.Background(), 0, 100, "")

	if resp.Success() {
		t.Fatal("Expected failure")
	}
	if resp.Class != ErrorClassDecode {
		t.Errorf("Class = %q, want %q", resp.Class, ErrorClassDecode)
	}
	msg := resp.Metadata.ErrorMessage()
	if !strings.HasPrefix(msg, "Type error") {
		t.Errorf("ErrorMessage = %q, want prefix %q", msg, "Type error")
	}
	if !strings.Contains(msg, "Path: 'data.1027.rank'.") {
		t.Errorf("ErrorMessage = %q, want path data.1027.rank", msg)
	}
}

func TestTransportFailure(t *testing.T) {
	mock := testutil.NewMockCMC()
	client := newTestClient(t, mock)
	mock.Close()

	resp := client.GetGlobalData(context.Background(), "")

	if resp.Success() {
		t.Fatal("Expected failure")
	}
	if resp.Class != ErrorClassTransport {
		t.Errorf("Class = %q, want %q", resp.Class, ErrorClassTransport)
	}
	if resp.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Metadata.ErrorMessage(), "send request: ") {
		t.Errorf("ErrorMessage = %q, want send request prefix", resp.Metadata.ErrorMessage())
	}
	if !resp.Metadata.Timestamp.Valid() {
		t.Error("Expected a failure timestamp")
	}
}

func TestContextCancelled(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetTickerUniverse(500, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, mock)
	resp := client.GetAllTickers(ctx, "")

	if resp.Success() {
		t.Fatal("Expected failure")
	}
	if resp.Class != ErrorClassTransport {
		t.Errorf("Class = %q, want %q", resp.Class, ErrorClassTransport)
	}
	if mock.GetRequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0", mock.GetRequestCount())
	}
}

func TestTimeout(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()

	resp := testutil.NewHealthyResponse(testutil.Envelope("[]", 0))
	resp.Delay = 200 * time.Millisecond
	mock.SetResponse("/v2/listings/", resp)

	client := newTestClient(t, mock, func(c *Config) { c.Timeout = 20 * time.Millisecond })
	got := client.GetCurrencies(context.Background())

	if got.Class != ErrorClassTransport {
		t.Errorf("Class = %q, want %q", got.Class, ErrorClassTransport)
	}
}

func TestAsyncVariants(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetTickerUniverse(150, 0)

	client := newTestClient(t, mock)
	ctx := context.Background()

	all := <-client.GetAllTickersAsync(ctx, "")
	if !all.Success() || all.Data.Len() != 150 {
		t.Errorf("GetAllTickersAsync: success=%v len=%d", all.Success(), all.Data.Len())
	}

	ch := client.GetTickersInRangeAsync(ctx, 1, 10, "")
	page := <-ch
	if page.Data.Len() != 10 {
		t.Errorf("GetTickersInRangeAsync len = %d, want 10", page.Data.Len())
	}
	if _, open := <-ch; open {
		t.Error("Expected channel to be closed after one envelope")
	}

	missing := <-client.GetTickerByIDAsync(ctx, 42, "")
	if missing.Success() {
		t.Error("Expected GetTickerByIDAsync failure for unknown id")
	}
}

func TestResponse_Success(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()

	mock.SetResponse("/v2/listings/", testutil.NewHealthyResponse(
		`{"data": [], "metadata": {"timestamp": 1525137187, "error": "   "}}`))

	client := newTestClient(t, mock)
	resp := client.GetCurrencies(context.Background())

	if !resp.Success() {
		t.Fatal("Whitespace error message must count as success")
	}
	if resp.Err() != nil {
		t.Errorf("Err() = %v, want nil", resp.Err())
	}

	resp.Metadata.SetError("changed later")
	if resp.Success() {
		t.Error("Success must follow metadata changes")
	}
}

func TestConfigLogger(t *testing.T) {
	mock := testutil.NewMockCMC()
	defer mock.Close()
	mock.SetTickerUniverse(150, 0)

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).With().Str("component", "custom").Logger()

	client := newTestClient(t, mock, func(c *Config) { c.Logger = &logger })
	client.GetTickerByID(context.Background(), 7, "")
	client.GetAllTickers(context.Background(), "")

	output := buf.String()
	if !strings.Contains(output, `"error_class":"domain"`) {
		t.Errorf("Expected failed envelope log, got %q", output)
	}
	if !strings.Contains(output, "Page collection complete") {
		t.Errorf("Expected collection log through the client logger, got %q", output)
	}
	if !strings.Contains(output, `"component":"custom"`) {
		t.Errorf("Expected custom component, got %q", output)
	}
}
