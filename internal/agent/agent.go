// Package agent contains the units of work a workflow sequences: model
// prompting agents, data-collection agents, and the approval-gated social
// draft agent. An agent never lets an error escape Execute; failures come
// back classified on the AgentResult.
package agent

import (
	"context"
	"time"

	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// Agent is one named step in a workflow.
type Agent interface {
	// Name is the agent's stable identifier, unique within a workflow.
	Name() string

	// RequiresApproval reports whether a successful run must pause the
	// workflow for a human decision before any later agent executes.
	RequiresApproval() bool

	// Execute performs the unit of work against the shared context.
	// It never returns an error; failures are reported on the result.
	Execute(ctx context.Context, wf *types.WorkflowContext) types.AgentResult
}

func failResult(name string, err error) types.AgentResult {
	return types.AgentResult{
		AgentName: name,
		Success:   false,
		Error:     err.Error(),
		ErrorKind: types.ClassifyError(err),
		Timestamp: time.Now().UTC(),
	}
}

func okResult(name string, output *types.Output) types.AgentResult {
	return types.AgentResult{
		AgentName: name,
		Success:   true,
		Output:    output,
		Timestamp: time.Now().UTC(),
	}
}

// runPrompt sends a prompt to the model and shapes the response through
// interpret. Generation errors keep their classification from the client.
func runPrompt(ctx context.Context, client llm.Client, name, prompt string, interpret func(raw string) *types.Output, opts ...llm.GenerateOption) types.AgentResult {
	raw, err := client.Generate(ctx, prompt, opts...)
	if err != nil {
		return failResult(name, err)
	}
	return okResult(name, interpret(raw))
}
