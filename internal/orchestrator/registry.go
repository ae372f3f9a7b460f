package orchestrator

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Eugenepoly/market-agent/internal/agent"
	"github.com/Eugenepoly/market-agent/internal/llm"
	"github.com/Eugenepoly/market-agent/internal/watchlist"
)

// RunOptions parameterize a run. They are resolved into a concrete agent
// list before the first agent executes, never mid-run.
type RunOptions struct {
	// SkipAnalysis drops the deep-analysis step from the daily pipeline.
	SkipAnalysis bool

	// Topic pins the deep analysis to a subject instead of letting the
	// model pick one from the report.
	Topic string

	// CollectData prepends the data-collection step to the daily pipeline.
	CollectData bool

	// QuickCollection makes collection agents skip model enrichment.
	QuickCollection bool
}

// WorkflowFactory materializes the ordered agent list for one named pipeline.
type WorkflowFactory func(opts RunOptions) []agent.Agent

// AgentFactory materializes one agent for standalone execution.
type AgentFactory func(opts RunOptions) agent.Agent

// Registry maps workflow and agent names to their factories.
type Registry struct {
	workflows map[string]WorkflowFactory
	agents    map[string]AgentFactory
}

func NewRegistry() *Registry {
	return &Registry{
		workflows: make(map[string]WorkflowFactory),
		agents:    make(map[string]AgentFactory),
	}
}

func (r *Registry) RegisterWorkflow(name string, f WorkflowFactory) {
	r.workflows[name] = f
}

func (r *Registry) RegisterAgent(name string, f AgentFactory) {
	r.agents[name] = f
}

func (r *Registry) Workflow(name string) (WorkflowFactory, error) {
	f, ok := r.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWorkflowNotFound, name)
	}
	return f, nil
}

func (r *Registry) Agent(name string) (AgentFactory, error) {
	f, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAgentNotFound, name)
	}
	return f, nil
}

// WorkflowNames returns the registered workflow names, sorted.
func (r *Registry) WorkflowNames() []string {
	names := make([]string, 0, len(r.workflows))
	for name := range r.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AgentNames returns the registered agent names, sorted.
func (r *Registry) AgentNames() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deps carries everything the built-in agents need.
type Deps struct {
	LLM       llm.Client
	Watchlist *watchlist.Watchlist
	DataDir   string
	Logger    *slog.Logger
}

// DailyWorkflow is the name of the built-in daily pipeline.
const DailyWorkflow = "daily"

// DefaultRegistry wires the built-in daily workflow and every agent for
// standalone runs.
func DefaultRegistry(d Deps) *Registry {
	if d.Watchlist == nil {
		d.Watchlist = watchlist.Default()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := NewRegistry()

	r.RegisterWorkflow(DailyWorkflow, func(opts RunOptions) []agent.Agent {
		var agents []agent.Agent
		if opts.CollectData {
			agents = append(agents, agent.NewDataCollectionAgent(d.LLM, d.Watchlist, d.DataDir, opts.QuickCollection, d.Logger))
		}
		agents = append(agents, agent.NewReportAgent(d.LLM, d.Watchlist))
		if !opts.SkipAnalysis {
			agents = append(agents, agent.NewDeepAnalysisAgent(d.LLM, opts.Topic))
		}
		agents = append(agents, agent.NewSocialAgent(d.LLM))
		return agents
	})

	r.RegisterAgent(agent.NameReport, func(RunOptions) agent.Agent {
		return agent.NewReportAgent(d.LLM, d.Watchlist)
	})
	r.RegisterAgent(agent.NameDeepAnalysis, func(opts RunOptions) agent.Agent {
		return agent.NewDeepAnalysisAgent(d.LLM, opts.Topic)
	})
	r.RegisterAgent(agent.NameSocial, func(RunOptions) agent.Agent {
		return agent.NewSocialAgent(d.LLM)
	})
	r.RegisterAgent(agent.NameMonitor, func(opts RunOptions) agent.Agent {
		return agent.NewMonitorAgent(d.LLM, d.Watchlist, d.DataDir, opts.QuickCollection, d.Logger)
	})
	r.RegisterAgent(agent.NameFundFlow, func(opts RunOptions) agent.Agent {
		return agent.NewFundFlowAgent(d.LLM, d.Watchlist, d.DataDir, opts.QuickCollection, d.Logger)
	})
	r.RegisterAgent(agent.NameOnchain, func(opts RunOptions) agent.Agent {
		return agent.NewOnchainAgent(d.LLM, d.DataDir, opts.QuickCollection, d.Logger)
	})
	r.RegisterAgent(agent.NameDataCollection, func(opts RunOptions) agent.Agent {
		return agent.NewDataCollectionAgent(d.LLM, d.Watchlist, d.DataDir, opts.QuickCollection, d.Logger)
	})

	return r
}
