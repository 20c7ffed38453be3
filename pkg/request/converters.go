package request

import "strings"

// SupportedFiatConverters are the fiat currencies the API can quote in.
var SupportedFiatConverters = []string{
	"AUD", "BRL", "CAD", "CHF", "CLP", "CNY", "CZK", "DKK", "EUR", "GBP", "HKD", "HUF", "IDR", "ILS", "INR", "JPY",
	"KRW", "MXN", "MYR", "NOK", "NZD", "PHP", "PKR", "PLN", "RUB", "SEK", "SGD", "THB", "TRY", "TWD", "ZAR",
}

// SupportedCryptoConverters are the cryptocurrencies the API can quote in.
var SupportedCryptoConverters = []string{
	"BTC", "ETH", "XRP", "LTC", "BCH",
}

// IsSupportedConverter reports whether code is a known quote currency.
// The comparison is case-insensitive.
func IsSupportedConverter(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range SupportedFiatConverters {
		if c == code {
			return true
		}
	}
	for _, c := range SupportedCryptoConverters {
		if c == code {
			return true
		}
	}
	return false
}
