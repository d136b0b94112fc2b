package v20

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// PricingComponent selects candlestick prices: any combination of "M"
// (midpoint), "B" (bid) and "A" (ask).
type PricingComponent string

// CandlesRequest holds the query of a candles request. Zero fields are left
// to the server defaults (S5 midpoint candles, count 500).
type CandlesRequest struct {
	Price       PricingComponent
	Granularity CandlestickGranularity
	Count       int
	From        DateTime
	To          DateTime
}

func (r CandlesRequest) query() url.Values {
	query := url.Values{}
	if r.Price != "" {
		query.Set("price", string(r.Price))
	}
	if r.Granularity != "" {
		query.Set("granularity", string(r.Granularity))
	}
	if r.Count > 0 {
		query.Set("count", strconv.Itoa(r.Count))
	}
	if r.From != "" {
		query.Set("from", string(r.From))
	}
	if r.To != "" {
		query.Set("to", string(r.To))
	}
	return query
}

// CandlesResponse is returned by GET /v3/instruments/{instrument}/candles
type CandlesResponse struct {
	Instrument  InstrumentName         `json:"instrument"`
	Granularity CandlestickGranularity `json:"granularity"`
	Candles     []Candlestick          `json:"candles"`
}

type orderBookResponse struct {
	OrderBook OrderBook `json:"orderBook"`
}

// Candles fetches candlestick data for an instrument
func (c *Client) Candles(ctx context.Context, instrument InstrumentName, req CandlesRequest) (*CandlesResponse, error) {
	var out CandlesResponse
	path := "/instruments/" + url.PathEscape(string(instrument)) + "/candles"
	if err := c.do(ctx, http.MethodGet, path, req.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrderBook fetches the order book of an instrument, the latest one when at
// is empty.
func (c *Client) OrderBook(ctx context.Context, instrument InstrumentName, at DateTime) (*OrderBook, error) {
	var query url.Values
	if at != "" {
		query = url.Values{"time": {string(at)}}
	}

	var out orderBookResponse
	path := "/instruments/" + url.PathEscape(string(instrument)) + "/orderBook"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out.OrderBook, nil
}
