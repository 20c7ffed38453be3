package snapshot

import (
	"strings"
)

// KindTickers is the kind of snapshots holding a full ticker mapping.
const KindTickers = "ticker"

// Key identifies a stored snapshot.
type Key struct {
	// Kind of data stored (KindTickers).
	Kind string

	// Converter is the extra quote currency, empty for USD only.
	Converter string
}

// String generates a deterministic key string.
// Format: cmc:snapshot:<kind>[:convert=<CODE>]
//
// Example:
//
//	cmc:snapshot:ticker:convert=EUR
func (k Key) String() string {
	parts := []string{"cmc", "snapshot"}

	kind := strings.ToLower(strings.TrimSpace(k.Kind))
	if kind == "" {
		kind = KindTickers
	}
	parts = append(parts, kind)

	if converter := normalizeConverter(k.Converter); converter != "" {
		parts = append(parts, "convert="+converter)
	}

	return strings.Join(parts, ":")
}

func normalizeConverter(c string) string {
	return strings.ToUpper(strings.TrimSpace(c))
}
