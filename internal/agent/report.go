package agent

import (
	"context"
	"time"

	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/internal/watchlist"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameReport is the report agent's registry name. Downstream agents look
// up its output in the context under this key.
const NameReport = "report"

// ReportAgent generates the daily market report. It runs first in the
// daily pipeline and its output seeds every downstream agent.
type ReportAgent struct {
	client  llm.Client
	symbols []watchlist.Symbol
	now     func() time.Time
}

func NewReportAgent(client llm.Client, wl *watchlist.Watchlist) *ReportAgent {
	return &ReportAgent{
		client:  client,
		symbols: wl.Symbols,
		now:     time.Now,
	}
}

func (a *ReportAgent) Name() string           { return NameReport }
func (a *ReportAgent) RequiresApproval() bool { return false }

// BuildPrompt is independent of prior context; the report is always the
// first model call of a run.
func (a *ReportAgent) BuildPrompt(_ *types.WorkflowContext) (string, error) {
	return reportPrompt(a.now().UTC(), a.symbols), nil
}

func (a *ReportAgent) Execute(ctx context.Context, wf *types.WorkflowContext) types.AgentResult {
	prompt, err := a.BuildPrompt(wf)
	if err != nil {
		return failResult(a.Name(), err)
	}
	return runPrompt(ctx, a.client, a.Name(), prompt, types.TextOutput, llm.WithSearch())
}
