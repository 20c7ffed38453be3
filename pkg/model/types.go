package model

import (
	"strings"
)

// Currency is one entry of the "listings/" endpoint.
type Currency struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	WebsiteSlug string `json:"website_slug"`
}

// Ticker is returned by "ticker/" (keyed by id) and "ticker/{id}/".
type Ticker struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	WebsiteSlug string `json:"website_slug"`
	Rank        int    `json:"rank"`

	CirculatingSupply NullNumber `json:"circulating_supply"`
	TotalSupply       NullNumber `json:"total_supply"`
	MaxSupply         NullNumber `json:"max_supply"`

	// Quotes is keyed by currency code ("USD" plus the requested converter).
	Quotes map[string]TickerQuote `json:"quotes"`

	LastUpdated Timestamp `json:"last_updated"`
}

// TickerQuote is a ticker's market data in one currency.
type TickerQuote struct {
	Price            NullNumber `json:"price"`
	Volume24h        NullNumber `json:"volume_24h"`
	MarketCap        NullNumber `json:"market_cap"`
	PercentChange1h  NullNumber `json:"percent_change_1h"`
	PercentChange24h NullNumber `json:"percent_change_24h"`
	PercentChange7d  NullNumber `json:"percent_change_7d"`
}

// GlobalData is returned by "global/".
type GlobalData struct {
	ActiveCryptocurrencies int                        `json:"active_cryptocurrencies"`
	ActiveMarkets          int                        `json:"active_markets"`
	BitcoinPercentage      Number                     `json:"bitcoin_percentage_of_market_cap"`
	Quotes                 map[string]GlobalDataQuote `json:"quotes"`
	LastUpdated            Timestamp                  `json:"last_updated"`
}

// GlobalDataQuote is the global market in one currency.
type GlobalDataQuote struct {
	TotalMarketCap Number `json:"total_market_cap"`
	TotalVolume24h Number `json:"total_volume_24h"`
}

// Metadata accompanies every payload.
type Metadata struct {
	Timestamp Timestamp `json:"timestamp"`

	// CryptocurrencyCount is only sent by "listings/" and "ticker/".
	CryptocurrencyCount *int `json:"num_cryptocurrencies,omitempty"`

	// Error is null on success.
	Error *string `json:"error"`
}

// ErrorMessage returns the error text, or "" when none was reported.
func (m *Metadata) ErrorMessage() string {
	if m == nil || m.Error == nil {
		return ""
	}
	return *m.Error
}

// HasError reports whether a non-blank error message is present.
func (m *Metadata) HasError() bool {
	return strings.TrimSpace(m.ErrorMessage()) != ""
}

// SetError replaces the error message.
func (m *Metadata) SetError(msg string) {
	m.Error = &msg
}

// Count returns the reported number of cryptocurrencies, or 0 when absent.
func (m *Metadata) Count() int {
	if m == nil || m.CryptocurrencyCount == nil {
		return 0
	}
	return *m.CryptocurrencyCount
}
