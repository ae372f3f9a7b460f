package types

import "errors"

// ErrorKind classifies an agent failure so the retry wrapper and the
// orchestrator can dispatch on it instead of matching message strings.
type ErrorKind string

const (
	// ErrorKindPrerequisite means required upstream data was absent from
	// the context. Not retryable.
	ErrorKindPrerequisite ErrorKind = "prerequisite"

	// ErrorKindTransient means a rate-limit/unavailable/overloaded style
	// failure from an external service. Eligible for retry with backoff.
	ErrorKindTransient ErrorKind = "transient"

	// ErrorKindPermanent is any other execution failure.
	ErrorKindPermanent ErrorKind = "permanent"
)

// AgentError carries a classified failure out of an agent's call path.
type AgentError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *AgentError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *AgentError) Unwrap() error { return e.Err }

// NewPrerequisiteError reports missing upstream data.
func NewPrerequisiteError(msg string) *AgentError {
	return &AgentError{Kind: ErrorKindPrerequisite, Msg: msg}
}

// NewTransientError wraps a retryable external failure.
func NewTransientError(msg string, err error) *AgentError {
	return &AgentError{Kind: ErrorKindTransient, Msg: msg, Err: err}
}

// NewPermanentError wraps a non-retryable execution failure.
func NewPermanentError(msg string, err error) *AgentError {
	return &AgentError{Kind: ErrorKindPermanent, Msg: msg, Err: err}
}

// ClassifyError extracts the ErrorKind from err, defaulting to permanent.
func ClassifyError(err error) ErrorKind {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ErrorKindPermanent
}
