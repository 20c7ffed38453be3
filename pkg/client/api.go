package client

import (
	"context"

	"github.com/Sternrassler/cmc-client/pkg/model"
	"github.com/Sternrassler/cmc-client/pkg/pagination"
	"github.com/Sternrassler/cmc-client/pkg/request"
)

// Typed envelopes returned by the API calls.
type (
	CurrenciesResponse = Response[[]model.Currency]
	TickerResponse     = Response[*model.Ticker]
	TickersResponse    = Response[*model.TickerPage]
	GlobalDataResponse = Response[*model.GlobalData]
)

// GetCurrencies lists every currency known to the API ("listings/").
func (c *Client) GetCurrencies(ctx context.Context) *CurrenciesResponse {
	return execute[[]model.Currency](ctx, c, request.New(request.EndpointListing))
}

// GetTickerByID returns one ticker. An empty converter means USD only.
func (c *Client) GetTickerByID(ctx context.Context, id int, converter string) *TickerResponse {
	settings := request.ForTicker(id).WithConverter(converter)
	return execute[*model.Ticker](ctx, c, settings)
}

// GetTickersInRange returns one page of tickers ordered by rank. start is
// the 1-based rank of the first ticker; 0 and 100 select the API defaults
// for start and limit.
func (c *Client) GetTickersInRange(ctx context.Context, start, limit int, converter string) *TickersResponse {
	settings := request.New(request.EndpointTicker).
		WithConverter(converter).
		WithStart(start).
		WithLimit(limit)
	return execute[*model.TickerPage](ctx, c, settings)
}

// GetAllTickers collects every ticker page into one mapping. When any page
// fails that page's envelope is returned unchanged. When the page budget
// runs out a failed envelope of class ErrorClassPagination is returned.
func (c *Client) GetAllTickers(ctx context.Context, converter string) *TickersResponse {
	fetch := func(ctx context.Context, start, limit int) tickerPage {
		return tickerPage{c.GetTickersInRange(ctx, start, limit, converter)}
	}

	collector := pagination.NewCollector(fetch, mergeTickerPages, pagination.Config{
		Limit:    c.config.PageLimit,
		MaxPages: c.config.MaxPages,
		Logger:   &c.logger,
	})
	result := collector.Collect(ctx)

	if result.Err != nil {
		return failure[*model.TickerPage](c, request.EndpointTicker.String(), ErrorClassPagination,
			result.Page.resp.StatusCode, result.Err.Error())
	}
	return result.Page.resp
}

// GetGlobalData returns global market figures.
func (c *Client) GetGlobalData(ctx context.Context, converter string) *GlobalDataResponse {
	settings := request.New(request.EndpointGlobalData).WithConverter(converter)
	return execute[*model.GlobalData](ctx, c, settings)
}

// GetCurrenciesAsync is the non-blocking form of GetCurrencies.
func (c *Client) GetCurrenciesAsync(ctx context.Context) <-chan *CurrenciesResponse {
	return async(func() *CurrenciesResponse { return c.GetCurrencies(ctx) })
}

// GetTickerByIDAsync is the non-blocking form of GetTickerByID.
func (c *Client) GetTickerByIDAsync(ctx context.Context, id int, converter string) <-chan *TickerResponse {
	return async(func() *TickerResponse { return c.GetTickerByID(ctx, id, converter) })
}

// GetTickersInRangeAsync is the non-blocking form of GetTickersInRange.
func (c *Client) GetTickersInRangeAsync(ctx context.Context, start, limit int, converter string) <-chan *TickersResponse {
	return async(func() *TickersResponse { return c.GetTickersInRange(ctx, start, limit, converter) })
}

// GetAllTickersAsync is the non-blocking form of GetAllTickers.
func (c *Client) GetAllTickersAsync(ctx context.Context, converter string) <-chan *TickersResponse {
	return async(func() *TickersResponse { return c.GetAllTickers(ctx, converter) })
}

// GetGlobalDataAsync is the non-blocking form of GetGlobalData.
func (c *Client) GetGlobalDataAsync(ctx context.Context, converter string) <-chan *GlobalDataResponse {
	return async(func() *GlobalDataResponse { return c.GetGlobalData(ctx, converter) })
}

// async runs call in its own goroutine. The channel receives exactly one
// envelope and is then closed.
func async[T any](call func() *Response[T]) <-chan *Response[T] {
	out := make(chan *Response[T], 1)
	go func() {
		defer close(out)
		out <- call()
	}()
	return out
}

// tickerPage adapts a ticker envelope to pagination.Page.
type tickerPage struct {
	resp *TickersResponse
}

func (p tickerPage) Succeeded() bool {
	return p.resp.Success()
}

func (p tickerPage) TotalCount() int {
	return p.resp.Metadata.Count()
}

func (p tickerPage) Len() int {
	return p.resp.Data.Len()
}

func mergeTickerPages(acc, next tickerPage) {
	if acc.resp.Data == nil {
		acc.resp.Data = model.NewTickerPage(next.Len())
	}
	acc.resp.Data.Merge(next.resp.Data)
}
