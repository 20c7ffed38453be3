package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/cmc-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for page collection.
var (
	factory = promauto.With(metrics.Registry)

	pagesFetchedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "cmc_pages_fetched_total",
		Help: "Total ticker pages fetched while collecting",
	})

	aggregationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "cmc_aggregations_total",
		Help: "Total page collections by result (success, failed, budget_exhausted)",
	}, []string{"result"})
)

// ErrPageBudgetExhausted is returned when the total count was not reached
// within Config.MaxPages pages.
var ErrPageBudgetExhausted = errors.New("page budget exhausted")

const (
	// FirstRank is the 1-based rank the start accumulator begins at.
	FirstRank = 1

	// DefaultStart asks the API for its default start position.
	DefaultStart = 0
)

// Config holds collector configuration.
type Config struct {
	// Limit is the page size and the start position step.
	Limit int

	// MaxPages bounds the number of fetched pages, the first included.
	MaxPages int

	// Logger receives progress messages. Nil means the global logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the configuration matching the ticker endpoint.
func DefaultConfig() Config {
	return Config{
		Limit:    100,
		MaxPages: 500,
	}
}

// Page is one fetched page as seen by the collector.
type Page interface {
	// Succeeded reports whether the page carries data.
	Succeeded() bool

	// TotalCount is the server-reported number of records overall.
	TotalCount() int

	// Len is the number of records held.
	Len() int
}

// FetchFunc fetches one page. start is DefaultStart for the first page.
type FetchFunc[P Page] func(ctx context.Context, start, limit int) P

// MergeFunc adds records of next missing from acc to acc.
type MergeFunc[P Page] func(acc, next P)

// Result is the outcome of one collection.
type Result[P Page] struct {
	// Page is the accumulated first page, or the first failing page.
	Page P

	// Pages is the number of pages fetched.
	Pages int

	// Collected is the number of distinct records accumulated.
	Collected int

	// Total is the count reported by the first page.
	Total int

	// Err is ErrPageBudgetExhausted (wrapped) when the budget ran out.
	Err error
}

// Collector fetches and merges pages sequentially.
type Collector[P Page] struct {
	fetch  FetchFunc[P]
	merge  MergeFunc[P]
	config Config
	logger zerolog.Logger
}

// NewCollector creates a new collector.
func NewCollector[P Page](fetch FetchFunc[P], merge MergeFunc[P], config Config) *Collector[P] {
	defaults := DefaultConfig()
	if config.Limit <= 0 {
		config.Limit = defaults.Limit
	}
	if config.MaxPages <= 0 {
		config.MaxPages = defaults.MaxPages
	}

	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Collector[P]{
		fetch:  fetch,
		merge:  merge,
		config: config,
		logger: logger,
	}
}

// Collect fetches every page until the reported total is reached, a page
// fails or the page budget runs out.
func (c *Collector[P]) Collect(ctx context.Context) Result[P] {
	startTime := time.Now()

	first := c.fetch(ctx, DefaultStart, c.config.Limit)
	pagesFetchedTotal.Inc()
	result := Result[P]{Page: first, Pages: 1}

	if !first.Succeeded() {
		aggregationsTotal.WithLabelValues("failed").Inc()
		c.logger.Warn().
			Int("page", 1).
			Msg("First page failed, collection abandoned")
		return result
	}

	result.Total = first.TotalCount()
	result.Collected = first.Len()

	c.logger.Debug().
		Int("total", result.Total).
		Int("collected", result.Collected).
		Int("limit", c.config.Limit).
		Msg("Starting page collection")

	start := FirstRank
	for result.Collected < result.Total {
		if result.Pages >= c.config.MaxPages {
			aggregationsTotal.WithLabelValues("budget_exhausted").Inc()
			result.Err = fmt.Errorf("%w: %d pages fetched, %d of %d records collected",
				ErrPageBudgetExhausted, result.Pages, result.Collected, result.Total)
			c.logger.Warn().
				Int("pages", result.Pages).
				Int("collected", result.Collected).
				Int("total", result.Total).
				Msg("Page budget exhausted")
			return result
		}

		start += c.config.Limit
		next := c.fetch(ctx, start, c.config.Limit)
		pagesFetchedTotal.Inc()
		result.Pages++

		if !next.Succeeded() {
			aggregationsTotal.WithLabelValues("failed").Inc()
			c.logger.Warn().
				Int("page", result.Pages).
				Int("start", start).
				Int("collected", result.Collected).
				Msg("Page fetch failed, collection abandoned")
			result.Page = next
			return result
		}

		c.merge(first, next)
		result.Collected = first.Len()

		if result.Pages%50 == 0 {
			c.logger.Info().
				Int("fetched", result.Pages).
				Int("collected", result.Collected).
				Int("total", result.Total).
				Msg("Page collection progress")
		}
	}

	aggregationsTotal.WithLabelValues("success").Inc()
	c.logger.Info().
		Int("pages", result.Pages).
		Int("collected", result.Collected).
		Dur("duration", time.Since(startTime)).
		Msg("Page collection complete")

	return result
}
