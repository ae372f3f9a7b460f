package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Eugenepoly/market-agent/internal/collectors"
	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/internal/watchlist"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameFundFlow is the fund-flow agent's registry name.
const NameFundFlow = "fundflow"

// FundFlowAgent gathers quotes, crypto sentiment, and derivatives
// positioning, then asks the model where large capital is moving. Each
// collector is best-effort; the agent fails only when every source
// comes back empty.
type FundFlowAgent struct {
	client     llm.Client
	collectors []collectors.Collector
	dataDir    string
	quick      bool
	logger     *slog.Logger
	now        func() time.Time
}

func NewFundFlowAgent(client llm.Client, wl *watchlist.Watchlist, dataDir string, quick bool, logger *slog.Logger) *FundFlowAgent {
	return &FundFlowAgent{
		client: client,
		collectors: []collectors.Collector{
			collectors.NewQuoteCollector(wl.Symbols),
			collectors.NewSentimentCollector(),
			collectors.NewFundingCollector(nil),
			collectors.NewOpenInterestCollector(nil),
		},
		dataDir: dataDir,
		quick:   quick,
		logger:  logger,
		now:     time.Now,
	}
}

func (a *FundFlowAgent) Name() string           { return NameFundFlow }
func (a *FundFlowAgent) RequiresApproval() bool { return false }

func (a *FundFlowAgent) Execute(ctx context.Context, _ *types.WorkflowContext) types.AgentResult {
	output, err := runCollectors(ctx, a.collectors, a.dataDir, a.logger)
	if err != nil {
		return failResult(a.Name(), err)
	}

	if !a.quick {
		prompt := fundflowPrompt(joinSections(output.Sections), a.now().UTC())
		analysis, genErr := a.client.Generate(ctx, prompt, llm.WithSearch())
		if genErr != nil {
			return failResult(a.Name(), genErr)
		}
		output.Sections["analysis"] = analysis
	}

	return okResult(a.Name(), &types.Output{Kind: types.OutputKindCollection, Collection: output})
}

// runCollectors drives a set of collectors, keeping per-source failures
// in the output. It errors only when no source produced data.
func runCollectors(ctx context.Context, cs []collectors.Collector, dataDir string, logger *slog.Logger) (*types.CollectionOutput, error) {
	output := &types.CollectionOutput{
		Sections: make(map[string]string, len(cs)),
	}

	succeeded := 0
	for _, c := range cs {
		result := collect(ctx, c, dataDir, logger)
		output.Sections[c.Name()] = formatResult(result)
		if result.Success {
			succeeded++
			if result.Error != "" {
				output.Errors = append(output.Errors, fmt.Sprintf("%s: %s", c.Name(), result.Error))
			}
		} else {
			output.Errors = append(output.Errors, fmt.Sprintf("%s: %s", c.Name(), result.Error))
		}
	}

	if succeeded == 0 {
		return nil, types.NewPermanentError("all collectors failed", fmt.Errorf("%s", strings.Join(output.Errors, "; ")))
	}
	output.Summary = fmt.Sprintf("%d/%d collectors succeeded", succeeded, len(cs))
	return output, nil
}

func joinSections(sections map[string]string) string {
	parts := make([]string, 0, len(sections))
	for _, name := range sortedKeys(sections) {
		parts = append(parts, sections[name])
	}
	return strings.Join(parts, "\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
