package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/Eugenepoly/market-agent/internal/watchlist"
)

func symbolList(symbols []watchlist.Symbol) string {
	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, s.Symbol)
	}
	return strings.Join(names, ", ")
}

func reportPrompt(now time.Time, symbols []watchlist.Symbol) string {
	return fmt.Sprintf(`### Role: Global Macro Strategist

### Phase 1: Dynamic market scan
1. Find the 3 sectors with the most anomalous volatility or volume over the past 24 hours.
2. Identify the current "eye of the storm" asset, whether equities, commodities, or crypto.

### Phase 2: Structured analysis
For the assets found above and my core positions (%s), work through:

1. The Delta: which information did the market not expect? Separate priced-in noise from unpriced signal.
2. Cross-asset contagion: if one asset moves hard, trace the knock-on effects on the others.
3. Positioning and sentiment: from social media, the options market (put/call ratio), and sell-side notes, judge whether the current view is consensus or contested.

### Phase 3: Output format
# Daily Trader Logic Update [%s]

## Market Heatmap
[the 3 most notable moves, with reasons]

## Core Assets Check
- AI / platforms: [incremental changes only]
- Macro / safe haven: [liquidity shifts]
- Physical assets: [supply and demand]

## Actionable Insights
- Long/short thesis revisions
- KPIs to watch tomorrow
`, symbolList(symbols), now.Format("2006-01-02"))
}

func deepAnalysisPrompt(report, topic string, now time.Time) string {
	var topicSection string
	if topic != "" {
		topicSection = fmt.Sprintf(`### Assigned topic
Analyze the following topic in depth:
**%s**
`, topic)
	} else {
		topicSection = `### Topic selection
From the report above, pick the 1-2 points most worth a deep dive. Selection criteria:
1. The event or asset with the largest expectation gap.
2. A catalyst that could trigger cross-asset contagion.
3. A risk or opportunity the market has not yet priced.
`
	}

	return fmt.Sprintf(`### Role: Deep Research Analyst

### Input: today's market report
%s

%s
### Framework
1. Context: historical precedents and what differs this time.
2. Bull vs bear: three core arguments each, with catalysts, triggers, and a probability estimate for each scenario.
3. Key metrics: five concrete indicators to monitor over the next 1-2 weeks, with current values and alert thresholds.
4. Trade ideas: direction, entry condition, target, stop, sizing.
5. Risk disclosure: three reasons this analysis could be wrong.

### Output format
# Deep Analysis Report [%s]

## Topic
## Core view (one sentence)
## Detailed analysis
## Recommended actions
`, fenced(report), topicSection, now.Format("2006-01-02"))
}

func socialPrompt(report, analysis string, now time.Time) string {
	var b strings.Builder
	b.WriteString(`### Role: Financial Social Media Editor

Turn the market analysis below into posts for X.

### Input

#### Market report
`)
	b.WriteString(fenced(report))
	if analysis != "" {
		b.WriteString("\n#### Deep analysis\n")
		b.WriteString(fenced(analysis))
	}
	b.WriteString(fmt.Sprintf(`
### Requirements
- Professional but readable; data-driven with concrete numbers; a clear opinion.
- Each post under 280 characters; a thread of 1-3 posts is fine.
- 2-3 relevant hashtags; 1-3 emoji at most.
- Lead with today's most important market signal and one actionable takeaway.
- No disclaimers, no @-mentions, no exaggeration.

### Output format
**Post 1/N**
[content]

**Hashtags**: #tag1 #tag2

### Date
%s
`, now.Format("2006-01-02")))
	return b.String()
}

func monitorPrompt(postsText string, now time.Time) string {
	return fmt.Sprintf(`### Role: Social Market Signal Analyst

### Task
Analyze the latest posts from watched accounts and surface anything that could move markets.

### Collected posts
%s

### Requirements
1. Rate each notable post's market impact: high (could move prices directly), medium, low.
2. Extract mentioned assets, policy hints, and sentiment direction.
3. Note agreement or conflict across accounts.
4. Recommend assets to watch and potential opportunities or risks.

### Output format
# VIP Monitoring Report [%s]

## Notable posts
## Market signals
## Recommended actions
## Sentiment overview
`, postsText, now.Format("2006-01-02 15:04"))
}

func fundflowPrompt(dataText string, now time.Time) string {
	return fmt.Sprintf(`### Role: Fund Flow Analyst

### Task
Analyze the fund-flow data below, identify what institutions and large capital are doing, and judge market sentiment.

### Collected data
%s

### Requirements
1. Market overview: index moves and the fear & greed reading.
2. Derivatives positioning: funding rates (positive means crowded longs), open interest shifts.
3. Divergence: where is smart money positioned against retail sentiment?
4. Three most important findings and concrete, flow-based suggestions.

### Output format
# Fund Flow Report [%s]

## Market overview
## Derivatives signals
## Core conclusions
## Suggested actions
`, dataText, now.Format("2006-01-02 15:04"))
}

func onchainPrompt(dataText string, now time.Time) string {
	return fmt.Sprintf(`### Role: On-Chain Analyst

### Task
Analyze the on-chain activity below and judge what large holders are doing.

### Collected data
%s

### Requirements
1. Summarize the latest block and transaction volume.
2. Flag large transfers and their likely direction (accumulation, distribution, exchange flow).
3. Judge the short-term implication for BTC price.

### Output format
# On-Chain Report [%s]

## Block summary
## Whale activity
## Implications
`, dataText, now.Format("2006-01-02 15:04"))
}

func fenced(s string) string {
	return "```\n" + s + "\n```\n"
}
