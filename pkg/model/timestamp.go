package model

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp is an instant carried on the wire as integer Unix epoch seconds.
// The zero Timestamp is the absent instant and encodes as JSON null.
type Timestamp struct {
	time.Time
}

// TimestampError is returned when a timestamp token is not an integer.
type TimestampError struct {
	Value string
}

// Error implements the error interface.
func (e *TimestampError) Error() string {
	return fmt.Sprintf("invalid unix timestamp %s: expected integer seconds or null", e.Value)
}

// FromUnix returns the UTC instant sec seconds after the Unix epoch.
func FromUnix(sec int64) Timestamp {
	return Timestamp{Time: time.Unix(sec, 0).UTC()}
}

// FromTime converts t to a Timestamp truncated to whole seconds.
// A zero t yields the absent instant.
func FromTime(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return FromUnix(t.Unix())
}

// Valid reports whether the instant is present.
func (t Timestamp) Valid() bool {
	return !t.Time.IsZero()
}

// Seconds returns the Unix seconds, or nil for the absent instant.
func (t Timestamp) Seconds() *int64 {
	if !t.Valid() {
		return nil
	}
	sec := t.Time.Unix()
	return &sec
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, t.Time.Unix(), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*t = Timestamp{}
		return nil
	}

	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return &TimestampError{Value: s}
	}

	*t = FromUnix(sec)
	return nil
}
