package request

import (
	"strconv"
	"strings"
)

// Fixed API location.
const (
	DefaultBaseURL = "https://api.coinmarketcap.com"
	DefaultVersion = "v2"
)

// Sentinel defaults. A parameter holding its sentinel is treated as unset
// and never rendered into the query string.
const (
	DefaultStartPosition = 0
	DefaultLimit         = 100
)

// Query parameter names, listed in the order the API expects them.
const (
	ParamConvert = "convert"
	ParamStart   = "start"
	ParamLimit   = "limit"
)

// Settings describes a single API call: which endpoint to hit and which
// optional query parameters to send.
//
// Settings is a value type; the With* methods return modified copies so a
// Settings value never changes once built.
//
// Examples:
//
//	New(EndpointTicker).WithLimit(10).URL()
//	  => https://api.coinmarketcap.com/v2/ticker/?limit=10
//	New(EndpointTicker).WithConverter("EUR").WithStart(101).WithLimit(10).URL()
//	  => https://api.coinmarketcap.com/v2/ticker/?convert=EUR&start=101&limit=10
//	ForTicker(1).WithConverter("EUR").URL()
//	  => https://api.coinmarketcap.com/v2/ticker/1/?convert=EUR
type Settings struct {
	// BaseURL overrides DefaultBaseURL (tests and proxies). Empty means default.
	BaseURL string

	// Endpoint selects the API endpoint.
	Endpoint Endpoint

	// TickerID is only used with EndpointTickerByID.
	TickerID int

	start     *int
	limit     *int
	converter *string
}

// New returns settings for the given endpoint with no parameters set.
func New(endpoint Endpoint) Settings {
	return Settings{Endpoint: endpoint}
}

// ForTicker returns settings for a single ticker lookup.
func ForTicker(id int) Settings {
	return Settings{Endpoint: EndpointTickerByID, TickerID: id}
}

// WithBaseURL returns a copy pointing at another API host.
func (s Settings) WithBaseURL(baseURL string) Settings {
	s.BaseURL = baseURL
	return s
}

// WithStart returns a copy with the ranking start position set. Passing
// DefaultStartPosition is ignored.
func (s Settings) WithStart(start int) Settings {
	if start != DefaultStartPosition {
		s.start = &start
	}
	return s
}

// WithLimit returns a copy with the page size set. Passing DefaultLimit is
// ignored.
func (s Settings) WithLimit(limit int) Settings {
	if limit != DefaultLimit {
		s.limit = &limit
	}
	return s
}

// WithConverter returns a copy with the quote currency set. Blank values
// are ignored.
func (s Settings) WithConverter(converter string) Settings {
	if strings.TrimSpace(converter) != "" {
		s.converter = &converter
	}
	return s
}

// Start returns the effective start position.
func (s Settings) Start() int {
	if s.start == nil {
		return DefaultStartPosition
	}
	return *s.start
}

// Limit returns the effective page size.
func (s Settings) Limit() int {
	if s.limit == nil {
		return DefaultLimit
	}
	return *s.limit
}

// Converter returns the quote currency, or "" when unset.
func (s Settings) Converter() string {
	if s.converter == nil {
		return ""
	}
	return *s.converter
}

// HasParams reports whether any query parameter will be rendered.
func (s Settings) HasParams() bool {
	return s.converter != nil || s.start != nil || s.limit != nil
}

// URL renders the request URL:
//
//	{base}/{version}/{segment}/[{tickerId}/][?convert=..&start=..&limit=..]
//
// Parameters are emitted in the fixed order convert, start, limit and only
// when set. URL performs no validation.
func (s Settings) URL() string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	b.WriteByte('/')
	b.WriteString(DefaultVersion)
	b.WriteByte('/')
	b.WriteString(s.Endpoint.Segment())
	b.WriteByte('/')

	if s.Endpoint == EndpointTickerByID {
		b.WriteString(strconv.Itoa(s.TickerID))
		b.WriteByte('/')
	}

	if !s.HasParams() {
		return b.String()
	}

	params := make([]string, 0, 3)
	if s.converter != nil {
		params = append(params, ParamConvert+"="+*s.converter)
	}
	if s.start != nil {
		params = append(params, ParamStart+"="+strconv.Itoa(*s.start))
	}
	if s.limit != nil {
		params = append(params, ParamLimit+"="+strconv.Itoa(*s.limit))
	}

	b.WriteByte('?')
	b.WriteString(strings.Join(params, "&"))
	return b.String()
}

// String implements fmt.Stringer.
func (s Settings) String() string {
	return s.URL()
}
