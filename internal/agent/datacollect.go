package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/internal/watchlist"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameDataCollection is the data-collection agent's registry name.
const NameDataCollection = "data_collection"

// DataCollectionAgent runs the monitoring agents up front so the daily
// pipeline works from fresh data. Sub-agents run in quick mode when the
// agent itself is quick; a sub-agent failure is reported but fatal only
// when every sub-agent fails.
type DataCollectionAgent struct {
	subAgents []Agent
}

func NewDataCollectionAgent(client llm.Client, wl *watchlist.Watchlist, dataDir string, quick bool, logger *slog.Logger) *DataCollectionAgent {
	return &DataCollectionAgent{
		subAgents: []Agent{
			NewMonitorAgent(client, wl, dataDir, quick, logger),
			NewFundFlowAgent(client, wl, dataDir, quick, logger),
			NewOnchainAgent(client, dataDir, quick, logger),
		},
	}
}

func (a *DataCollectionAgent) Name() string           { return NameDataCollection }
func (a *DataCollectionAgent) RequiresApproval() bool { return false }

func (a *DataCollectionAgent) Execute(ctx context.Context, wf *types.WorkflowContext) types.AgentResult {
	output := &types.CollectionOutput{
		Sections: make(map[string]string, len(a.subAgents)),
	}

	succeeded := 0
	for _, sub := range a.subAgents {
		result := sub.Execute(ctx, wf)
		if result.Success {
			succeeded++
			output.Sections[sub.Name()] = result.Output.PlainText()
			if coll := result.Output.Collection; coll != nil {
				output.Errors = append(output.Errors, coll.Errors...)
			}
		} else {
			output.Sections[sub.Name()] = "failed: " + result.Error
			output.Errors = append(output.Errors, fmt.Sprintf("%s: %s", sub.Name(), result.Error))
		}
	}

	if succeeded == 0 {
		err := types.NewPermanentError("data collection failed",
			fmt.Errorf("%s", strings.Join(output.Errors, "; ")))
		return failResult(a.Name(), err)
	}

	output.Summary = fmt.Sprintf("data collection done: %d/%d sources", succeeded, len(a.subAgents))
	return okResult(a.Name(), &types.Output{Kind: types.OutputKindCollection, Collection: output})
}
