package agent

import (
	"context"
	"time"

	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameSocial is the social agent's registry name.
const NameSocial = "social"

// SocialAgent drafts an X post from the report and, when present, the
// deep analysis. The draft must be approved by a human before it is
// promoted; a successful run suspends the workflow.
type SocialAgent struct {
	client llm.Client
	now    func() time.Time
}

func NewSocialAgent(client llm.Client) *SocialAgent {
	return &SocialAgent{client: client, now: time.Now}
}

func (a *SocialAgent) Name() string           { return NameSocial }
func (a *SocialAgent) RequiresApproval() bool { return true }

func (a *SocialAgent) BuildPrompt(wf *types.WorkflowContext) (string, error) {
	report, ok := wf.Data[NameReport]
	if !ok || report.PlainText() == "" {
		return "", types.NewPrerequisiteError("no report in context; the report agent must run first")
	}

	var analysis string
	if out, ok := wf.Data[NameDeepAnalysis]; ok {
		analysis = out.PlainText()
	}
	return socialPrompt(report.PlainText(), analysis, a.now().UTC()), nil
}

func (a *SocialAgent) Execute(ctx context.Context, wf *types.WorkflowContext) types.AgentResult {
	prompt, err := a.BuildPrompt(wf)
	if err != nil {
		return failResult(a.Name(), err)
	}

	_, basedOnAnalysis := wf.Data[NameDeepAnalysis]
	// Drafting works from already-gathered material; no search tool.
	return runPrompt(ctx, a.client, a.Name(), prompt, func(raw string) *types.Output {
		return types.NewDraftOutput(raw, "x", basedOnAnalysis)
	})
}
