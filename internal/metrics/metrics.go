// Package metrics provides Prometheus metrics for the workflow service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowsTotal counts finished workflow runs by final status.
	WorkflowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketagent",
			Subsystem: "orchestrator",
			Name:      "workflows_total",
			Help:      "Total number of workflow runs by final status",
		},
		[]string{"workflow", "status"},
	)

	// WorkflowsActive tracks workflow runs currently executing agents.
	WorkflowsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "marketagent",
			Subsystem: "orchestrator",
			Name:      "workflows_active",
			Help:      "Number of workflow runs currently executing",
		},
	)

	// AgentsTotal counts agent executions by status.
	AgentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketagent",
			Subsystem: "orchestrator",
			Name:      "agents_total",
			Help:      "Total number of agent executions by status",
		},
		[]string{"agent", "status"}, // "succeeded", "failed"
	)

	// AgentDuration tracks per-agent execution time.
	AgentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketagent",
			Subsystem: "orchestrator",
			Name:      "agent_duration_seconds",
			Help:      "Agent execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"agent"},
	)

	// ApprovalsTotal counts human approval decisions.
	ApprovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketagent",
			Subsystem: "orchestrator",
			Name:      "approvals_total",
			Help:      "Total number of approval decisions",
		},
		[]string{"decision"}, // "approved", "rejected"
	)

	// HTTPRequestsTotal counts API requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketagent",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "marketagent",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ModelRequestsTotal counts generative-model calls by outcome.
	ModelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "marketagent",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total number of model API requests by outcome",
		},
		[]string{"outcome"}, // "ok", "transient_error", "permanent_error"
	)
)
