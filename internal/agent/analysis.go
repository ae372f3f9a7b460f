package agent

import (
	"context"
	"time"

	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameDeepAnalysis is the deep-analysis agent's registry name.
const NameDeepAnalysis = "deep_analysis"

// autoTopic marks an analysis whose subject was extracted from the report
// rather than supplied by the caller.
const autoTopic = "auto-extracted"

// DeepAnalysisAgent produces an in-depth analysis of one market topic.
// With an empty Topic it asks the model to pick the most interesting
// points from the report; it cannot run before the report exists.
type DeepAnalysisAgent struct {
	client llm.Client
	topic  string
	now    func() time.Time
}

func NewDeepAnalysisAgent(client llm.Client, topic string) *DeepAnalysisAgent {
	return &DeepAnalysisAgent{
		client: client,
		topic:  topic,
		now:    time.Now,
	}
}

func (a *DeepAnalysisAgent) Name() string           { return NameDeepAnalysis }
func (a *DeepAnalysisAgent) RequiresApproval() bool { return false }

func (a *DeepAnalysisAgent) BuildPrompt(wf *types.WorkflowContext) (string, error) {
	report, ok := wf.Data[NameReport]
	if !ok || report.PlainText() == "" {
		return "", types.NewPrerequisiteError("no report in context; the report agent must run first")
	}
	return deepAnalysisPrompt(report.PlainText(), a.topic, a.now().UTC()), nil
}

func (a *DeepAnalysisAgent) Execute(ctx context.Context, wf *types.WorkflowContext) types.AgentResult {
	prompt, err := a.BuildPrompt(wf)
	if err != nil {
		return failResult(a.Name(), err)
	}

	topic := a.topic
	if topic == "" {
		topic = autoTopic
	}
	return runPrompt(ctx, a.client, a.Name(), prompt, func(raw string) *types.Output {
		return types.NewAnalysisOutput(raw, topic)
	}, llm.WithSearch())
}
