// Package request builds CoinMarketCap public API request URLs.
package request

// Endpoint identifies a CoinMarketCap public API endpoint.
type Endpoint int

const (
	// EndpointListing lists all currencies ("listings/").
	EndpointListing Endpoint = iota

	// EndpointTicker returns a ranked range of tickers ("ticker/").
	EndpointTicker

	// EndpointTickerByID returns a single ticker ("ticker/{id}/").
	EndpointTickerByID

	// EndpointGlobalData returns global market data ("global/").
	EndpointGlobalData
)

// segments maps each endpoint to its URL path segment.
var segments = map[Endpoint]string{
	EndpointListing:    "listings",
	EndpointTicker:     "ticker",
	EndpointTickerByID: "ticker",
	EndpointGlobalData: "global",
}

// names are the metric/log labels of each endpoint.
var names = map[Endpoint]string{
	EndpointListing:    "listings",
	EndpointTicker:     "ticker",
	EndpointTickerByID: "ticker_by_id",
	EndpointGlobalData: "global",
}

// Segment returns the URL path segment of the endpoint.
func (e Endpoint) Segment() string {
	return segments[e]
}

// String returns a stable label for the endpoint.
func (e Endpoint) String() string {
	if name, ok := names[e]; ok {
		return name
	}
	return "unknown"
}
