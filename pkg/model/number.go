package model

import (
	"github.com/shopspring/decimal"
)

// Number is an exact decimal carried on the wire as a JSON number.
// It decodes numbers and quoted numbers alike and always encodes unquoted,
// independent of decimal.MarshalJSONWithoutQuotes.
type Number struct {
	decimal.Decimal
}

// NewNumber wraps d.
func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	return n.Decimal.UnmarshalJSON(data)
}

// NullNumber is a Number that may be JSON null. Valid is false for null.
type NullNumber struct {
	decimal.NullDecimal
}

// NewNullNumber wraps d as a present value.
func NewNullNumber(d decimal.Decimal) NullNumber {
	return NullNumber{NullDecimal: decimal.NewNullDecimal(d)}
}

// MarshalJSON implements json.Marshaler.
func (n NullNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullNumber) UnmarshalJSON(data []byte) error {
	return n.NullDecimal.UnmarshalJSON(data)
}
