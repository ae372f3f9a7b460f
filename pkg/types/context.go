// Package types provides shared types for workflow state and agent results.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus represents the current state of a workflow run.
type WorkflowStatus string

const (
	StatusPending         WorkflowStatus = "pending"
	StatusRunning         WorkflowStatus = "running"
	StatusWaitingApproval WorkflowStatus = "waiting_approval"
	StatusCompleted       WorkflowStatus = "completed"
	StatusFailed          WorkflowStatus = "failed"
	StatusRejected        WorkflowStatus = "rejected"
)

// Terminal reports whether the status is a final state.
func (s WorkflowStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusRejected:
		return true
	}
	return false
}

// AgentResult is the outcome of a single agent execution. It is folded
// into the workflow context immediately after the step completes.
type AgentResult struct {
	AgentName string    `json:"agent_name"`
	Success   bool      `json:"success"`
	Output    *Output   `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ApprovalRequest represents one outstanding human decision. It is present
// on a context exactly while the workflow is in StatusWaitingApproval.
type ApprovalRequest struct {
	AgentName   string    `json:"agent_name"`
	Content     *Output   `json:"content"`
	ContentType string    `json:"content_type"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WorkflowContext is the durable state of one workflow run. The orchestrator
// is its only writer while the run is in progress; once persisted it is the
// sole source of truth for status queries.
type WorkflowContext struct {
	ID              string             `json:"workflow_id"`
	WorkflowName    string             `json:"workflow_name"`
	Status          WorkflowStatus     `json:"status"`
	CurrentAgent    string             `json:"current_agent,omitempty"`
	Data            map[string]*Output `json:"data"`
	AgentResults    []AgentResult      `json:"agent_results"`
	PendingApproval *ApprovalRequest   `json:"pending_approval,omitempty"`
	Error           string             `json:"error,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewWorkflowContext creates a fresh context in StatusPending with a
// generated id.
func NewWorkflowContext(workflowName string) *WorkflowContext {
	now := time.Now().UTC()
	return &WorkflowContext{
		ID:           uuid.New().String(),
		WorkflowName: workflowName,
		Status:       StatusPending,
		Data:         make(map[string]*Output),
		AgentResults: make([]AgentResult, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Record appends the result to the audit trail and, on success, stores its
// output under the agent's name. Callers record at most one result per agent
// per run; Data entries are never overwritten within a run.
func (c *WorkflowContext) Record(result AgentResult) {
	c.AgentResults = append(c.AgentResults, result)
	if result.Success && result.Output != nil {
		if c.Data == nil {
			c.Data = make(map[string]*Output)
		}
		c.Data[result.AgentName] = result.Output
	}
	c.Touch()
}

// OpenApproval parks the context in StatusWaitingApproval with the given
// request. Only one approval may be outstanding at a time.
func (c *WorkflowContext) OpenApproval(req ApprovalRequest) error {
	if c.PendingApproval != nil {
		return fmt.Errorf("approval already pending for agent %q", c.PendingApproval.AgentName)
	}
	c.PendingApproval = &req
	c.Status = StatusWaitingApproval
	c.Touch()
	return nil
}

// CloseApproval clears the pending approval. The caller sets the final
// status (StatusCompleted or StatusRejected) afterwards.
func (c *WorkflowContext) CloseApproval() {
	c.PendingApproval = nil
	c.Touch()
}

// Touch refreshes the updated_at timestamp.
func (c *WorkflowContext) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
