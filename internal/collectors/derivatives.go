package collectors

import (
	"context"
	"fmt"
	"strconv"
)

// FundingCollector fetches perpetual-futures funding rates from the
// Binance futures API. Elevated funding is a leverage-crowding signal
// for the fund-flow agent.
type FundingCollector struct {
	BaseURL string
	Symbols []string

	fetcher *httpFetcher
}

// NewFundingCollector watches the given perp symbols (e.g. BTCUSDT).
func NewFundingCollector(symbols []string) *FundingCollector {
	if len(symbols) == 0 {
		symbols = []string{"BTCUSDT", "ETHUSDT"}
	}
	return &FundingCollector{
		BaseURL: "https://fapi.binance.com",
		Symbols: symbols,
		fetcher: newHTTPFetcher(2),
	}
}

func (c *FundingCollector) Name() string { return "funding" }

type premiumIndexEntry struct {
	Symbol          string `json:"symbol"`
	MarkPrice       string `json:"markPrice"`
	LastFundingRate string `json:"lastFundingRate"`
}

func (c *FundingCollector) Collect(ctx context.Context) Result {
	var entries []premiumIndexEntry
	if err := c.fetcher.getJSON(ctx, c.BaseURL+"/fapi/v1/premiumIndex", &entries); err != nil {
		return failure(c.Name(), "binance", err)
	}

	watched := make(map[string]bool, len(c.Symbols))
	for _, s := range c.Symbols {
		watched[s] = true
	}

	var items []map[string]any
	for _, e := range entries {
		if !watched[e.Symbol] {
			continue
		}
		rate, _ := strconv.ParseFloat(e.LastFundingRate, 64)
		price, _ := strconv.ParseFloat(e.MarkPrice, 64)
		items = append(items, map[string]any{
			"symbol":       e.Symbol,
			"mark_price":   price,
			"funding_rate": rate,
		})
	}
	if len(items) == 0 {
		return failure(c.Name(), "binance", fmt.Errorf("no watched symbols in response"))
	}
	return success(c.Name(), "binance", items)
}

// OpenInterestCollector fetches futures open interest per symbol from
// the Binance futures API.
type OpenInterestCollector struct {
	BaseURL string
	Symbols []string

	fetcher *httpFetcher
}

// NewOpenInterestCollector watches the given perp symbols.
func NewOpenInterestCollector(symbols []string) *OpenInterestCollector {
	if len(symbols) == 0 {
		symbols = []string{"BTCUSDT", "ETHUSDT"}
	}
	return &OpenInterestCollector{
		BaseURL: "https://fapi.binance.com",
		Symbols: symbols,
		fetcher: newHTTPFetcher(2),
	}
}

func (c *OpenInterestCollector) Name() string { return "open_interest" }

func (c *OpenInterestCollector) Collect(ctx context.Context) Result {
	var items []map[string]any
	var lastErr error

	for _, symbol := range c.Symbols {
		var entry struct {
			Symbol       string `json:"symbol"`
			OpenInterest string `json:"openInterest"`
		}
		url := fmt.Sprintf("%s/fapi/v1/openInterest?symbol=%s", c.BaseURL, symbol)
		if err := c.fetcher.getJSON(ctx, url, &entry); err != nil {
			lastErr = err
			continue
		}
		oi, _ := strconv.ParseFloat(entry.OpenInterest, 64)
		items = append(items, map[string]any{
			"symbol":        entry.Symbol,
			"open_interest": oi,
		})
	}

	if len(items) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no symbols collected")
		}
		return failure(c.Name(), "binance", lastErr)
	}
	return success(c.Name(), "binance", items)
}
