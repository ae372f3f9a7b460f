package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewWorkflowContext(t *testing.T) {
	ctx := NewWorkflowContext("daily")

	if ctx.ID == "" {
		t.Error("expected ID to be generated")
	}
	if ctx.WorkflowName != "daily" {
		t.Errorf("expected WorkflowName %q, got %q", "daily", ctx.WorkflowName)
	}
	if ctx.Status != StatusPending {
		t.Errorf("expected status %q, got %q", StatusPending, ctx.Status)
	}
	if ctx.CreatedAt.IsZero() || ctx.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	other := NewWorkflowContext("daily")
	if other.ID == ctx.ID {
		t.Error("two contexts should have distinct ids")
	}
}

func TestRecord(t *testing.T) {
	t.Run("successful result stores output", func(t *testing.T) {
		ctx := NewWorkflowContext("daily")
		before := ctx.UpdatedAt

		ctx.Record(AgentResult{
			AgentName: "report",
			Success:   true,
			Output:    TextOutput("market up"),
			Timestamp: time.Now().UTC(),
		})

		if len(ctx.AgentResults) != 1 {
			t.Fatalf("expected 1 result, got %d", len(ctx.AgentResults))
		}
		if got := ctx.Data["report"]; got == nil || got.Text != "market up" {
			t.Errorf("expected data entry for report, got %+v", got)
		}
		if !ctx.UpdatedAt.After(before) && !ctx.UpdatedAt.Equal(before) {
			t.Error("UpdatedAt should be refreshed")
		}
	})

	t.Run("failed result is appended but not stored in data", func(t *testing.T) {
		ctx := NewWorkflowContext("daily")
		ctx.Record(AgentResult{
			AgentName: "report",
			Success:   false,
			Error:     "model unavailable",
			ErrorKind: ErrorKindTransient,
			Timestamp: time.Now().UTC(),
		})

		if len(ctx.AgentResults) != 1 {
			t.Fatalf("expected 1 result, got %d", len(ctx.AgentResults))
		}
		if _, ok := ctx.Data["report"]; ok {
			t.Error("failed result must not appear in data")
		}
	})
}

func TestApprovalInvariant(t *testing.T) {
	ctx := NewWorkflowContext("daily")

	req := ApprovalRequest{
		AgentName:   "social",
		Content:     NewDraftOutput("a draft", "x", false),
		ContentType: "post_draft",
		Message:     "review before publishing",
		CreatedAt:   time.Now().UTC(),
	}

	if err := ctx.OpenApproval(req); err != nil {
		t.Fatalf("OpenApproval failed: %v", err)
	}
	if ctx.Status != StatusWaitingApproval {
		t.Errorf("expected status %q, got %q", StatusWaitingApproval, ctx.Status)
	}
	if ctx.PendingApproval == nil {
		t.Fatal("pending approval should be set")
	}

	// Second approval while one is outstanding is invalid.
	if err := ctx.OpenApproval(req); err == nil {
		t.Error("expected error opening a second approval")
	}

	ctx.CloseApproval()
	if ctx.PendingApproval != nil {
		t.Error("pending approval should be cleared")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := NewWorkflowContext("daily")
	ctx.Status = StatusWaitingApproval
	ctx.CurrentAgent = "social"
	ctx.Record(AgentResult{
		AgentName: "report",
		Success:   true,
		Output:    TextOutput("report body"),
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})
	ctx.Record(AgentResult{
		AgentName: "deep_analysis",
		Success:   true,
		Output:    NewAnalysisOutput("analysis body", "rates"),
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})
	ctx.PendingApproval = &ApprovalRequest{
		AgentName:   "social",
		Content:     NewDraftOutput("draft body", "x", true),
		ContentType: "post_draft",
		Message:     "review",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored WorkflowContext
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.ID != ctx.ID || restored.WorkflowName != ctx.WorkflowName {
		t.Error("identity fields did not survive round trip")
	}
	if restored.Status != StatusWaitingApproval {
		t.Errorf("status did not survive round trip: %q", restored.Status)
	}
	if len(restored.AgentResults) != 2 {
		t.Fatalf("expected 2 agent results, got %d", len(restored.AgentResults))
	}
	if restored.AgentResults[0].AgentName != "report" || restored.AgentResults[1].AgentName != "deep_analysis" {
		t.Error("agent result order not preserved")
	}
	if restored.Data["deep_analysis"].Analysis == nil ||
		restored.Data["deep_analysis"].Analysis.Topic != "rates" {
		t.Error("nested analysis output did not survive round trip")
	}
	if restored.PendingApproval == nil {
		t.Fatal("pending approval did not survive round trip")
	}
	if restored.PendingApproval.Content.Draft == nil ||
		restored.PendingApproval.Content.Draft.Draft != "draft body" {
		t.Error("nested approval content did not survive round trip")
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := []WorkflowStatus{StatusCompleted, StatusFailed, StatusRejected}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	open := []WorkflowStatus{StatusPending, StatusRunning, StatusWaitingApproval}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}

func TestOutputValidate(t *testing.T) {
	cases := []struct {
		name    string
		out     *Output
		wantErr bool
	}{
		{"text", TextOutput("hi"), false},
		{"draft", NewDraftOutput("d", "x", false), false},
		{"analysis", NewAnalysisOutput("a", "t"), false},
		{"draft missing payload", &Output{Kind: OutputKindDraft}, true},
		{"unknown kind", &Output{Kind: "mystery"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.out.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
