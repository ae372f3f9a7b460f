// Package watchlist holds the monitored accounts, symbols, and alert
// rules used by the monitoring agents.
package watchlist

// Account is a watched social-media account.
type Account struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Symbol is a watched market instrument.
type Symbol struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Class    string `json:"class"` // stock, crypto, index
}

// Watchlist groups everything the monitoring agents look at.
type Watchlist struct {
	Accounts []Account
	Symbols  []Symbol
	Keywords []string
	Rules    []Rule
}

// Default returns the built-in watchlist.
func Default() *Watchlist {
	return &Watchlist{
		Accounts: []Account{
			{Platform: "x", Handle: "elonmusk", Name: "Elon Musk", Category: "tech_leader"},
			{Platform: "x", Handle: "VitalikButerin", Name: "Vitalik Buterin", Category: "crypto"},
			{Platform: "x", Handle: "michael_saylor", Name: "Michael Saylor", Category: "crypto"},
			{Platform: "x", Handle: "CathieDWood", Name: "Cathie Wood", Category: "investor"},
			{Platform: "x", Handle: "jimcramer", Name: "Jim Cramer", Category: "media"},
			{Platform: "truth_social", Handle: "realDonaldTrump", Name: "Donald Trump", Category: "political"},
		},
		Symbols: []Symbol{
			{Symbol: "NVDA", Name: "NVIDIA", Category: "ai_chip", Class: "stock"},
			{Symbol: "GOOGL", Name: "Alphabet", Category: "ai_platform", Class: "stock"},
			{Symbol: "TSLA", Name: "Tesla", Category: "ev_energy", Class: "stock"},
			{Symbol: "GLD", Name: "SPDR Gold Trust", Category: "safe_haven", Class: "stock"},
			{Symbol: "BTC", Name: "Bitcoin", Category: "crypto_major", Class: "crypto"},
			{Symbol: "ETH", Name: "Ethereum", Category: "crypto_major", Class: "crypto"},
			{Symbol: "SPY", Name: "S&P 500 ETF", Category: "index", Class: "index"},
			{Symbol: "QQQ", Name: "Nasdaq 100 ETF", Category: "index", Class: "index"},
			{Symbol: "^VIX", Name: "Volatility Index", Category: "volatility", Class: "index"},
		},
		Keywords: []string{
			"tariff", "rate cut", "rate hike", "acquisition", "bankruptcy",
			"sec", "etf approval", "halving", "hack", "regulation",
		},
		Rules: []Rule{
			{
				Name: "keyword_hit",
				Expr: `matchedKeywords(text) != ""`,
			},
			{
				Name: "political_post",
				Expr: `category == "political"`,
			},
			{
				Name: "crypto_leader_on_btc",
				Expr: `category == "crypto" && (lower(text) contains "btc" || lower(text) contains "bitcoin")`,
			},
		},
	}
}
