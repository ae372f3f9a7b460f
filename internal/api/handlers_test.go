package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eugenepoly/market-agent/internal/agent"
	"github.com/Eugenepoly/market-agent/internal/orchestrator"
	"github.com/Eugenepoly/market-agent/internal/statestore"
	"github.com/Eugenepoly/market-agent/internal/validator"
	"github.com/Eugenepoly/market-agent/pkg/types"
)

type stubAgent struct {
	name     string
	approval bool
}

func (a *stubAgent) Name() string           { return a.name }
func (a *stubAgent) RequiresApproval() bool { return a.approval }

func (a *stubAgent) Execute(_ context.Context, _ *types.WorkflowContext) types.AgentResult {
	return types.AgentResult{
		AgentName: a.name,
		Success:   true,
		Output:    types.TextOutput(a.name + " output"),
		Timestamp: time.Now().UTC(),
	}
}

func newTestServer(t *testing.T) (*httptest.Server, statestore.Store) {
	t.Helper()

	registry := orchestrator.NewRegistry()
	registry.RegisterWorkflow("daily", func(orchestrator.RunOptions) []agent.Agent {
		return []agent.Agent{
			&stubAgent{name: "report"},
			&stubAgent{name: "social", approval: true},
		}
	})
	registry.RegisterAgent("report", func(orchestrator.RunOptions) agent.Agent {
		return &stubAgent{name: "report"}
	})

	store := statestore.NewMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	orch := orchestrator.New(store, registry, orchestrator.Config{Logger: logger})

	v, err := validator.New()
	require.NoError(t, err)

	srv := NewServer(NewHandlers(orch, store, v, nil, logger))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store
}

func decodeContext(t *testing.T, resp *http.Response) *types.WorkflowContext {
	t.Helper()
	defer resp.Body.Close()
	var wf types.WorkflowContext
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wf))
	return &wf
}

func TestRunWorkflowEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/daily", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	wf := decodeContext(t, resp)
	assert.Equal(t, types.StatusWaitingApproval, wf.Status)
	assert.NotNil(t, wf.PendingApproval)
	assert.NotEmpty(t, wf.ID)
}

func TestRunWorkflowEndpoint_EmptyBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/daily", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunWorkflowEndpoint_UnknownWorkflow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/nope", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunWorkflowEndpoint_InvalidBody(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/daily", "application/json",
		strings.NewReader(`{"skip": true}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, ErrCodeBadRequest, errResp.Error)
}

func TestWorkflowStatusEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/daily", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	started := decodeContext(t, resp)

	resp, err = http.Get(ts.URL + "/workflow/" + started.ID + "/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeContext(t, resp)
	assert.Equal(t, started.ID, got.ID)

	resp, err = http.Get(ts.URL + "/workflow/does-not-exist/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApproveEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/daily", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	started := decodeContext(t, resp)

	resp, err = http.Post(ts.URL+"/workflow/"+started.ID+"/approve", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decodeContext(t, resp)
	assert.Equal(t, types.StatusCompleted, approved.Status)

	// A second approve hits a workflow that is no longer suspended.
	resp, err = http.Post(ts.URL+"/workflow/"+started.ID+"/approve", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRejectEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/workflow/daily", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	started := decodeContext(t, resp)

	resp, err = http.Post(ts.URL+"/workflow/"+started.ID+"/reject", "application/json",
		strings.NewReader(`{"reason":"bad tone"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rejected := decodeContext(t, resp)
	assert.Equal(t, types.StatusRejected, rejected.Status)
	assert.Equal(t, "bad tone", rejected.Error)
}

func TestRunAgentEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/agent/report", "application/json",
		strings.NewReader(`{"seed":{"prior":"seed text"}}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	wf := decodeContext(t, resp)
	assert.Equal(t, types.StatusCompleted, wf.Status)
	assert.Contains(t, wf.Data, "prior")
	assert.Contains(t, wf.Data, "report")

	resp, err = http.Post(ts.URL+"/agent/nope", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListWorkflowsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/workflow/daily", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		resp.Body.Close()
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get(ts.URL + "/workflows")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all []*types.WorkflowContext
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 2)
	assert.True(t, !all[0].CreatedAt.Before(all[1].CreatedAt), "list must be newest first")
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
