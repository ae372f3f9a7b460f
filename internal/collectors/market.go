package collectors

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Eugenepoly/market-agent/internal/watchlist"
)

// QuoteCollector fetches delayed quotes for the watched symbols from the
// Yahoo Finance quote API.
type QuoteCollector struct {
	BaseURL string
	Symbols []watchlist.Symbol

	fetcher *httpFetcher
}

// NewQuoteCollector builds a collector over the given symbols.
func NewQuoteCollector(symbols []watchlist.Symbol) *QuoteCollector {
	return &QuoteCollector{
		BaseURL: "https://query1.finance.yahoo.com",
		Symbols: symbols,
		fetcher: newHTTPFetcher(2),
	}
}

func (c *QuoteCollector) Name() string { return "quotes" }

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			MarketCap                  int64   `json:"marketCap"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func (c *QuoteCollector) Collect(ctx context.Context) Result {
	symbols := make([]string, 0, len(c.Symbols))
	for _, s := range c.Symbols {
		symbols = append(symbols, s.Symbol)
	}

	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		c.BaseURL, url.QueryEscape(strings.Join(symbols, ",")))

	var resp yahooQuoteResponse
	if err := c.fetcher.getJSON(ctx, endpoint, &resp); err != nil {
		return failure(c.Name(), "yahoo", err)
	}

	items := make([]map[string]any, 0, len(resp.QuoteResponse.Result))
	for _, q := range resp.QuoteResponse.Result {
		items = append(items, map[string]any{
			"symbol":         q.Symbol,
			"price":          q.RegularMarketPrice,
			"change_percent": q.RegularMarketChangePercent,
			"volume":         q.RegularMarketVolume,
			"market_cap":     q.MarketCap,
		})
	}
	return success(c.Name(), "yahoo", items)
}

// SentimentCollector fetches the crypto fear & greed index, a cheap
// market-mood proxy used in the fund-flow report.
type SentimentCollector struct {
	BaseURL string
	fetcher *httpFetcher
}

// NewSentimentCollector builds the collector against the public API.
func NewSentimentCollector() *SentimentCollector {
	return &SentimentCollector{
		BaseURL: "https://api.alternative.me",
		fetcher: newHTTPFetcher(1),
	}
}

func (c *SentimentCollector) Name() string { return "sentiment" }

type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

func (c *SentimentCollector) Collect(ctx context.Context) Result {
	var resp fngResponse
	if err := c.fetcher.getJSON(ctx, c.BaseURL+"/fng/?limit=1", &resp); err != nil {
		return failure(c.Name(), "alternative.me", err)
	}
	if len(resp.Data) == 0 {
		return failure(c.Name(), "alternative.me", fmt.Errorf("empty fear-greed response"))
	}

	return success(c.Name(), "alternative.me", []map[string]any{{
		"index":          resp.Data[0].Value,
		"classification": resp.Data[0].Classification,
	}})
}
