// Package model holds the CoinMarketCap wire types.
//
// Field names follow the API's snake_case JSON. Monetary and supply values
// use shopspring/decimal so prices survive a decode/encode cycle without
// float rounding; Number and NullNumber wrap them and always encode as
// unquoted JSON numbers. Instants are carried on the wire as Unix epoch
// seconds (see Timestamp).
package model
