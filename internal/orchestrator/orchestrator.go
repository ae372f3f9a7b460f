// Package orchestrator sequences workflow agents through a durable state
// machine. Every step is persisted before and after execution, so a run
// is inspectable mid-flight and a crash loses at most the in-flight step.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Eugenepoly/market-agent/internal/agent"
	"github.com/Eugenepoly/market-agent/internal/drafts"
	"github.com/Eugenepoly/market-agent/internal/mailer"
	"github.com/Eugenepoly/market-agent/internal/metrics"
	"github.com/Eugenepoly/market-agent/internal/reports"
	"github.com/Eugenepoly/market-agent/internal/statestore"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

var (
	// ErrWorkflowNotFound means the caller named an unregistered workflow.
	ErrWorkflowNotFound = errors.New("unknown workflow")

	// ErrAgentNotFound means the caller named an unregistered agent.
	ErrAgentNotFound = errors.New("unknown agent")

	// ErrInvalidState means approve/reject was called on a workflow that
	// is not waiting for approval.
	ErrInvalidState = errors.New("workflow is not waiting for approval")
)

// defaultRejectReason is recorded when reject is called without one.
const defaultRejectReason = "Rejected by user"

var tracer = otel.Tracer("market-agent/orchestrator")

// Config holds the orchestrator's collaborators. Drafts, Archive and
// Mailer are optional; when nil the corresponding side-effect hand-offs
// are skipped.
type Config struct {
	Drafts  *drafts.Store
	Archive reports.Archive
	Mailer  *mailer.Mailer
	Logger  *slog.Logger
}

// Orchestrator runs registered workflows against the durable store. It is
// the only writer of a context while its run is in progress; callers must
// not drive run/approve/reject concurrently for the same workflow id.
type Orchestrator struct {
	store    statestore.Store
	registry *Registry
	drafts   *drafts.Store
	archive  reports.Archive
	mailer   *mailer.Mailer
	logger   *slog.Logger
}

func New(store statestore.Store, registry *Registry, cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    store,
		registry: registry,
		drafts:   cfg.Drafts,
		archive:  cfg.Archive,
		mailer:   cfg.Mailer,
		logger:   logger,
	}
}

// RunWorkflow executes the named workflow to completion, suspension, or
// failure. Agent failures never surface as errors; they are recorded on
// the returned context. The error return is reserved for caller mistakes
// (unknown name) and persistence faults.
func (o *Orchestrator) RunWorkflow(ctx context.Context, name string, opts RunOptions) (*types.WorkflowContext, error) {
	factory, err := o.registry.Workflow(name)
	if err != nil {
		return nil, err
	}
	agents := factory(opts)

	wf := types.NewWorkflowContext(name)
	ctx, span := tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("workflow.name", name),
		attribute.String("workflow.id", wf.ID),
	))
	defer span.End()
	o.logger.Info("workflow started", "workflow", name, "id", wf.ID, "agents", len(agents))

	metrics.WorkflowsActive.Inc()
	defer metrics.WorkflowsActive.Dec()

	for _, ag := range agents {
		halted, err := o.step(ctx, wf, ag)
		if err != nil {
			return wf, err
		}
		if halted {
			return wf, nil
		}
	}
	return wf, o.complete(ctx, wf)
}

// RunSingleAgent runs exactly one registered agent against a fresh context
// seeded with the given data. The same recording, approval, and failure
// rules as a workflow step apply.
func (o *Orchestrator) RunSingleAgent(ctx context.Context, name string, seed map[string]*types.Output, opts RunOptions) (*types.WorkflowContext, error) {
	factory, err := o.registry.Agent(name)
	if err != nil {
		return nil, err
	}
	ag := factory(opts)

	wf := types.NewWorkflowContext("agent:" + name)
	for k, v := range seed {
		wf.Data[k] = v
	}
	o.logger.Info("single agent started", "agent", name, "id", wf.ID)

	metrics.WorkflowsActive.Inc()
	defer metrics.WorkflowsActive.Dec()

	halted, err := o.step(ctx, wf, ag)
	if err != nil {
		return wf, err
	}
	if halted {
		return wf, nil
	}
	return wf, o.complete(ctx, wf)
}

// step runs one agent with checkpointing. It returns halted=true when the
// run must not continue (failure or approval suspension); err only for
// persistence faults.
func (o *Orchestrator) step(ctx context.Context, wf *types.WorkflowContext, ag agent.Agent) (halted bool, err error) {
	ctx, span := tracer.Start(ctx, "agent."+ag.Name(), trace.WithAttributes(
		attribute.String("workflow.id", wf.ID),
	))
	defer span.End()

	// Checkpoint before executing so external observers see the run in
	// progress with the agent's name.
	wf.Status = types.StatusRunning
	wf.CurrentAgent = ag.Name()
	wf.Touch()
	if err := o.store.Put(ctx, wf); err != nil {
		return true, fmt.Errorf("checkpoint %s: %w", wf.ID, err)
	}

	started := time.Now()
	result := ag.Execute(ctx, wf)
	metrics.AgentDuration.WithLabelValues(ag.Name()).Observe(time.Since(started).Seconds())
	wf.Record(result)

	if !result.Success {
		metrics.AgentsTotal.WithLabelValues(ag.Name(), "failed").Inc()
		o.logger.Warn("agent failed", "agent", ag.Name(), "id", wf.ID,
			"kind", string(result.ErrorKind), "error", result.Error)

		wf.Status = types.StatusFailed
		wf.CurrentAgent = ""
		wf.Error = result.Error
		wf.Touch()
		if err := o.store.Put(ctx, wf); err != nil {
			return true, fmt.Errorf("persist failure of %s: %w", wf.ID, err)
		}
		metrics.WorkflowsTotal.WithLabelValues(wf.WorkflowName, string(wf.Status)).Inc()
		return true, nil
	}

	metrics.AgentsTotal.WithLabelValues(ag.Name(), "succeeded").Inc()
	o.logger.Info("agent finished", "agent", ag.Name(), "id", wf.ID,
		"duration", time.Since(started).Round(time.Millisecond))
	o.handOff(ctx, wf, ag.Name(), result.Output)

	if ag.RequiresApproval() {
		contentType := ""
		if result.Output != nil {
			contentType = string(result.Output.Kind)
		}
		req := types.ApprovalRequest{
			AgentName:   ag.Name(),
			Content:     result.Output,
			ContentType: contentType,
			Message:     fmt.Sprintf("agent %q produced content that needs approval", ag.Name()),
			CreatedAt:   time.Now().UTC(),
		}
		if err := wf.OpenApproval(req); err != nil {
			return true, fmt.Errorf("open approval for %s: %w", wf.ID, err)
		}
		if err := o.store.Put(ctx, wf); err != nil {
			return true, fmt.Errorf("persist suspension of %s: %w", wf.ID, err)
		}
		o.logger.Info("workflow waiting for approval", "id", wf.ID, "agent", ag.Name())
		return true, nil
	}
	return false, nil
}

func (o *Orchestrator) complete(ctx context.Context, wf *types.WorkflowContext) error {
	wf.Status = types.StatusCompleted
	wf.CurrentAgent = ""
	wf.Touch()
	if err := o.store.Put(ctx, wf); err != nil {
		return fmt.Errorf("persist completion of %s: %w", wf.ID, err)
	}
	metrics.WorkflowsTotal.WithLabelValues(wf.WorkflowName, string(wf.Status)).Inc()
	o.logger.Info("workflow completed", "id", wf.ID, "workflow", wf.WorkflowName)
	return nil
}

// handOff performs the per-agent side effect expected after a successful
// step. All of these are best-effort: a failed write is logged and never
// fails the workflow.
func (o *Orchestrator) handOff(ctx context.Context, wf *types.WorkflowContext, agentName string, out *types.Output) {
	switch agentName {
	case agent.NameReport:
		if o.mailer != nil {
			if _, err := o.mailer.SendReport("", out.PlainText()); err != nil {
				o.logger.Warn("report mail failed", "id", wf.ID, "error", err)
			}
		}
		if o.archive == nil {
			return
		}
		if _, err := o.archive.SaveReport(ctx, out.PlainText()); err != nil {
			o.logger.Warn("report archive write failed", "id", wf.ID, "error", err)
		}
	case agent.NameDeepAnalysis:
		if o.archive == nil {
			return
		}
		if _, err := o.archive.SaveAnalysis(ctx, out.PlainText()); err != nil {
			o.logger.Warn("analysis archive write failed", "id", wf.ID, "error", err)
		}
	case agent.NameSocial:
		if o.drafts == nil {
			return
		}
		if err := o.drafts.SavePending(wf.ID, out.PlainText()); err != nil {
			o.logger.Warn("pending draft write failed", "id", wf.ID, "error", err)
		}
	}
}

// Approve finalizes a suspended workflow: the pending draft is promoted
// to approved and the run completes. Later pipeline agents do not resume;
// approval is a terminal decision.
func (o *Orchestrator) Approve(ctx context.Context, id string) (*types.WorkflowContext, error) {
	wf, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf.Status != types.StatusWaitingApproval || wf.PendingApproval == nil {
		return nil, fmt.Errorf("%w: workflow %s is %s", ErrInvalidState, id, wf.Status)
	}

	if o.drafts != nil {
		if err := o.drafts.Approve(id); err != nil {
			o.logger.Warn("draft promotion failed", "id", id, "error", err)
		}
	}

	wf.CloseApproval()
	wf.Status = types.StatusCompleted
	wf.CurrentAgent = ""
	wf.Touch()
	if err := o.store.Put(ctx, wf); err != nil {
		return nil, fmt.Errorf("persist approval of %s: %w", id, err)
	}

	metrics.ApprovalsTotal.WithLabelValues("approved").Inc()
	metrics.WorkflowsTotal.WithLabelValues(wf.WorkflowName, string(wf.Status)).Inc()
	o.logger.Info("workflow approved", "id", id)
	return wf, nil
}

// Reject discards a suspended workflow's pending content. The pending
// draft is deleted, never promoted.
func (o *Orchestrator) Reject(ctx context.Context, id, reason string) (*types.WorkflowContext, error) {
	wf, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf.Status != types.StatusWaitingApproval || wf.PendingApproval == nil {
		return nil, fmt.Errorf("%w: workflow %s is %s", ErrInvalidState, id, wf.Status)
	}
	if reason == "" {
		reason = defaultRejectReason
	}

	if o.drafts != nil {
		if err := o.drafts.DeletePending(id); err != nil {
			o.logger.Warn("pending draft delete failed", "id", id, "error", err)
		}
	}

	wf.CloseApproval()
	wf.Status = types.StatusRejected
	wf.Error = reason
	wf.CurrentAgent = ""
	wf.Touch()
	if err := o.store.Put(ctx, wf); err != nil {
		return nil, fmt.Errorf("persist rejection of %s: %w", id, err)
	}

	metrics.ApprovalsTotal.WithLabelValues("rejected").Inc()
	metrics.WorkflowsTotal.WithLabelValues(wf.WorkflowName, string(wf.Status)).Inc()
	o.logger.Info("workflow rejected", "id", id, "reason", reason)
	return wf, nil
}

// GetStatus is a pure read of the persisted context.
func (o *Orchestrator) GetStatus(ctx context.Context, id string) (*types.WorkflowContext, error) {
	return o.store.Get(ctx, id)
}

// List returns every persisted context, newest first.
func (o *Orchestrator) List(ctx context.Context) ([]*types.WorkflowContext, error) {
	return o.store.List(ctx)
}
