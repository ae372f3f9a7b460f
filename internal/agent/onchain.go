package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/Eugenepoly/market-agent/internal/collectors"
	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameOnchain is the on-chain agent's registry name.
const NameOnchain = "onchain"

// OnchainAgent watches large Bitcoin transactions in the latest block
// and, in full mode, asks the model what whales are doing.
type OnchainAgent struct {
	client     llm.Client
	collectors []collectors.Collector
	dataDir    string
	quick      bool
	logger     *slog.Logger
	now        func() time.Time
}

func NewOnchainAgent(client llm.Client, dataDir string, quick bool, logger *slog.Logger) *OnchainAgent {
	return &OnchainAgent{
		client:     client,
		collectors: []collectors.Collector{collectors.NewChainCollector()},
		dataDir:    dataDir,
		quick:      quick,
		logger:     logger,
		now:        time.Now,
	}
}

func (a *OnchainAgent) Name() string           { return NameOnchain }
func (a *OnchainAgent) RequiresApproval() bool { return false }

func (a *OnchainAgent) Execute(ctx context.Context, _ *types.WorkflowContext) types.AgentResult {
	output, err := runCollectors(ctx, a.collectors, a.dataDir, a.logger)
	if err != nil {
		return failResult(a.Name(), err)
	}

	if !a.quick {
		prompt := onchainPrompt(joinSections(output.Sections), a.now().UTC())
		analysis, genErr := a.client.Generate(ctx, prompt, llm.WithSearch())
		if genErr != nil {
			return failResult(a.Name(), genErr)
		}
		output.Sections["analysis"] = analysis
	}

	return okResult(a.Name(), &types.Output{Kind: types.OutputKindCollection, Collection: output})
}
