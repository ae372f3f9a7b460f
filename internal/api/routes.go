package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the configured router.
type Server struct {
	router   *mux.Router
	handlers *Handlers
}

// NewServer creates an API server with the given handlers. Extra
// middleware (auth, rate limiting) wraps the whole router.
func NewServer(h *Handlers, extra ...mux.MiddlewareFunc) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		handlers: h,
	}
	s.setupRoutes(extra...)
	return s
}

// Router returns the configured router for use with http.Server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(extra ...mux.MiddlewareFunc) {
	// Health and observability
	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")
	s.router.HandleFunc("/ready", s.handlers.Ready).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Workflow lifecycle
	s.router.HandleFunc("/workflow/{name}", s.handlers.RunWorkflow).Methods("POST")
	s.router.HandleFunc("/workflow/{id}/status", s.handlers.GetWorkflowStatus).Methods("GET")
	s.router.HandleFunc("/workflow/{id}/approve", s.handlers.ApproveWorkflow).Methods("POST")
	s.router.HandleFunc("/workflow/{id}/reject", s.handlers.RejectWorkflow).Methods("POST")
	s.router.HandleFunc("/workflows", s.handlers.ListWorkflows).Methods("GET")

	// Standalone agent execution
	s.router.HandleFunc("/agent/{name}", s.handlers.RunAgent).Methods("POST")

	s.router.Use(s.handlers.CORSMiddleware)
	s.router.Use(s.handlers.LoggingMiddleware)
	s.router.Use(s.handlers.RecoveryMiddleware)
	for _, m := range extra {
		s.router.Use(m)
	}
}
