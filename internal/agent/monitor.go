package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Eugenepoly/market-agent/internal/collectors"
	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/internal/watchlist"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

// NameMonitor is the monitor agent's registry name.
const NameMonitor = "monitor"

// MonitorAgent collects posts from watched accounts, evaluates the alert
// rules against them, and in full mode asks the model for an impact
// analysis. Quick mode stops after rule evaluation.
type MonitorAgent struct {
	client    llm.Client
	collector collectors.Collector
	evaluator *watchlist.Evaluator
	rules     []watchlist.Rule
	dataDir   string
	quick     bool
	logger    *slog.Logger
	now       func() time.Time
}

func NewMonitorAgent(client llm.Client, wl *watchlist.Watchlist, dataDir string, quick bool, logger *slog.Logger) *MonitorAgent {
	return &MonitorAgent{
		client:    client,
		collector: collectors.NewSocialCollector(wl.Accounts),
		evaluator: watchlist.NewEvaluator(wl.Keywords),
		rules:     wl.Rules,
		dataDir:   dataDir,
		quick:     quick,
		logger:    logger,
		now:       time.Now,
	}
}

func (a *MonitorAgent) Name() string           { return NameMonitor }
func (a *MonitorAgent) RequiresApproval() bool { return false }

func (a *MonitorAgent) Execute(ctx context.Context, _ *types.WorkflowContext) types.AgentResult {
	result := collect(ctx, a.collector, a.dataDir, a.logger)
	if !result.Success {
		return failResult(a.Name(), types.NewPermanentError("post collection failed", fmt.Errorf("%s", result.Error)))
	}

	posts := postsFromItems(result.Items)
	alerts := a.evaluator.Evaluate(a.rules, posts)

	output := &types.CollectionOutput{
		Summary: fmt.Sprintf("collected %d posts, %d alerts", len(posts), len(alerts)),
		Sections: map[string]string{
			"posts":  formatResult(result),
			"alerts": formatAlerts(alerts),
		},
	}
	if result.Error != "" {
		output.Errors = append(output.Errors, result.Error)
	}

	if !a.quick {
		prompt := monitorPrompt(output.Sections["posts"], a.now().UTC())
		analysis, err := a.client.Generate(ctx, prompt, llm.WithSearch())
		if err != nil {
			return failResult(a.Name(), err)
		}
		output.Sections["analysis"] = analysis
	}

	return okResult(a.Name(), &types.Output{Kind: types.OutputKindCollection, Collection: output})
}

func postsFromItems(items []map[string]any) []watchlist.Post {
	posts := make([]watchlist.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, watchlist.Post{
			Platform: str(item["platform"]),
			Handle:   str(item["handle"]),
			Category: str(item["category"]),
			Text:     str(item["text"]),
		})
	}
	return posts
}

func formatAlerts(alerts []watchlist.Alert) string {
	if len(alerts) == 0 {
		return "no alerts"
	}
	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Sprintf("%d alerts (render failed: %v)", len(alerts), err)
	}
	return string(data)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
