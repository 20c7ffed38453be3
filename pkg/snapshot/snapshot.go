package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sternrassler/cmc-client/pkg/client"
	"github.com/Sternrassler/cmc-client/pkg/model"
	"github.com/google/uuid"
)

// Snapshot is one stored aggregation.
type Snapshot struct {
	// ID is unique per write.
	ID uuid.UUID `json:"id"`

	Kind      string `json:"kind"`
	Converter string `json:"converter,omitempty"`

	// Count is the number of tickers held in Data.
	Count int `json:"count"`

	// Timestamp is the API metadata timestamp of the first page.
	Timestamp model.Timestamp `json:"timestamp"`

	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Data is the ticker mapping in rank order.
	Data json.RawMessage `json:"data"`
}

// NewTickerSnapshot builds a snapshot from a successful "all tickers"
// envelope.
func NewTickerSnapshot(converter string, resp *client.TickersResponse, retention time.Duration) (*Snapshot, error) {
	if !resp.Success() {
		return nil, fmt.Errorf("snapshot of failed response: %w", resp.Err())
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be > 0 (got %s)", retention)
	}

	page := resp.Data
	if page == nil {
		page = model.NewTickerPage(0)
	}
	data, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("marshal tickers: %w", err)
	}

	now := time.Now().UTC()
	return &Snapshot{
		ID:        uuid.New(),
		Kind:      KindTickers,
		Converter: normalizeConverter(converter),
		Count:     page.Len(),
		Timestamp: resp.Metadata.Timestamp,
		StoredAt:  now,
		ExpiresAt: now.Add(retention),
		Data:      data,
	}, nil
}

// Key returns the key the snapshot is stored under.
func (s *Snapshot) Key() Key {
	return Key{Kind: s.Kind, Converter: s.Converter}
}

// IsExpired returns true if the retention period has passed.
func (s *Snapshot) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// TTL returns the remaining retention.
// Returns 0 if already expired.
func (s *Snapshot) TTL() time.Duration {
	ttl := time.Until(s.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Tickers decodes Data, keeping rank order.
func (s *Snapshot) Tickers() (*model.TickerPage, error) {
	page := model.NewTickerPage(s.Count)
	if err := json.Unmarshal(s.Data, page); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return page, nil
}
