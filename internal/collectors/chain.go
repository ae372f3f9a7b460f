package collectors

import (
	"context"
	"fmt"
)

// ChainCollector samples recent Bitcoin block activity from the
// blockchain.info API as a coarse whale-movement signal: latest block,
// then the largest transactions inside it.
type ChainCollector struct {
	BaseURL string

	// MinValueBTC filters transactions below this total output value.
	MinValueBTC float64

	fetcher *httpFetcher
}

// NewChainCollector uses the public endpoint with a 100 BTC threshold.
func NewChainCollector() *ChainCollector {
	return &ChainCollector{
		BaseURL:     "https://blockchain.info",
		MinValueBTC: 100,
		fetcher:     newHTTPFetcher(1),
	}
}

func (c *ChainCollector) Name() string { return "onchain" }

type latestBlock struct {
	Hash   string `json:"hash"`
	Height int64  `json:"height"`
	Time   int64  `json:"time"`
}

type rawBlock struct {
	Tx []struct {
		Hash string `json:"hash"`
		Out  []struct {
			Value int64 `json:"value"` // satoshis
		} `json:"out"`
	} `json:"tx"`
}

func (c *ChainCollector) Collect(ctx context.Context) Result {
	var latest latestBlock
	if err := c.fetcher.getJSON(ctx, c.BaseURL+"/latestblock", &latest); err != nil {
		return failure(c.Name(), "blockchain.info", err)
	}

	var block rawBlock
	blockURL := fmt.Sprintf("%s/rawblock/%s", c.BaseURL, latest.Hash)
	if err := c.fetcher.getJSON(ctx, blockURL, &block); err != nil {
		return failure(c.Name(), "blockchain.info", err)
	}

	const satoshisPerBTC = 1e8
	items := []map[string]any{{
		"block_height": latest.Height,
		"block_hash":   latest.Hash,
		"block_time":   latest.Time,
		"tx_count":     len(block.Tx),
	}}

	for _, tx := range block.Tx {
		var total int64
		for _, out := range tx.Out {
			total += out.Value
		}
		btc := float64(total) / satoshisPerBTC
		if btc >= c.MinValueBTC {
			items = append(items, map[string]any{
				"tx_hash":   tx.Hash,
				"value_btc": btc,
			})
		}
	}
	return success(c.Name(), "blockchain.info", items)
}
