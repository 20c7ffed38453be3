package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
)

// TickerPage maps a ticker id (as a string) to its ticker, remembering the
// order in which keys were first inserted. The API returns tickers ordered by
// rank, and that order is kept through decoding, merging and encoding.
//
// The zero TickerPage is empty and ready to use.
type TickerPage struct {
	keys  []string
	items map[string]Ticker
}

// NewTickerPage returns an empty page with room for n tickers.
func NewTickerPage(n int) *TickerPage {
	return &TickerPage{
		keys:  make([]string, 0, n),
		items: make(map[string]Ticker, n),
	}
}

// Len returns the number of tickers. A nil page is empty.
func (p *TickerPage) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Get returns the ticker stored under key.
func (p *TickerPage) Get(key string) (Ticker, bool) {
	if p == nil {
		return Ticker{}, false
	}
	t, ok := p.items[key]
	return t, ok
}

// Has reports whether key is present.
func (p *TickerPage) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Add inserts t under key unless key is already present. It reports whether
// the ticker was inserted; an existing value is never overwritten.
func (p *TickerPage) Add(key string, t Ticker) bool {
	if p.items == nil {
		p.items = make(map[string]Ticker)
	}
	if _, ok := p.items[key]; ok {
		return false
	}
	p.keys = append(p.keys, key)
	p.items[key] = t
	return true
}

// Merge adds every entry of src whose key is not yet present, in src order,
// and returns how many were added.
func (p *TickerPage) Merge(src *TickerPage) int {
	added := 0
	for key, t := range src.All() {
		if p.Add(key, t) {
			added++
		}
	}
	return added
}

// Keys returns the keys in insertion order.
func (p *TickerPage) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Tickers returns the tickers in insertion order.
func (p *TickerPage) Tickers() []Ticker {
	if p == nil {
		return nil
	}
	out := make([]Ticker, 0, len(p.keys))
	for _, key := range p.keys {
		out = append(out, p.items[key])
	}
	return out
}

// All iterates over key/ticker pairs in insertion order.
func (p *TickerPage) All() iter.Seq2[string, Ticker] {
	return func(yield func(string, Ticker) bool) {
		if p == nil {
			return
		}
		for _, key := range p.keys {
			if !yield(key, p.items[key]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the page as a JSON object in insertion order.
func (p TickerPage) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.items[key])
		if err != nil {
			return nil, fmt.Errorf("ticker %s: %w", k, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func joinField(key, field string) string {
	if field == "" {
		return key
	}
	return key + "." + field
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
// A key repeated inside one document keeps its first position and its last
// value, as encoding/json does for maps.
func (p *TickerPage) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = TickerPage{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ticker page: expected JSON object, got %v", tok)
	}

	page := TickerPage{items: make(map[string]Ticker)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("ticker page: expected object key, got %v", tok)
		}

		var t Ticker
		if err := dec.Decode(&t); err != nil {
			// Type errors stay unwrapped so an enclosing decoder can
			// extend Field with its own path.
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				typeErr.Field = joinField(key, typeErr.Field)
				return typeErr
			}
			return fmt.Errorf("ticker page key %q: %w", key, err)
		}
		if _, seen := page.items[key]; !seen {
			page.keys = append(page.keys, key)
		}
		page.items[key] = t
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = page
	return nil
}
