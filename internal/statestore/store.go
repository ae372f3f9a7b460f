// Package statestore provides durable persistence for workflow contexts.
package statestore

import (
	"context"
	"errors"
	"strings"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

// ErrNotFound is returned when no context exists for the given id.
var ErrNotFound = errors.New("workflow not found")

// Store persists workflow context snapshots keyed by workflow id.
// Put overwrites the full document for the id (last-write-wins); there is
// no cross-id transaction and no optimistic concurrency. Implementations
// must be safe for concurrent use across distinct ids.
type Store interface {
	Put(ctx context.Context, wc *types.WorkflowContext) error
	Get(ctx context.Context, id string) (*types.WorkflowContext, error)

	// List returns all persisted contexts ordered by creation time, newest first.
	List(ctx context.Context) ([]*types.WorkflowContext, error)

	Delete(ctx context.Context, id string) error
	Close() error
}

// validID rejects ids that could escape the backing keyspace. Generated ids
// are UUIDs, so anything with a path separator is caller error.
func validID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, "/\\.")
}
