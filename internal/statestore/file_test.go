package statestore

import (
	"context"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return store
}

func TestFileStore_PutGet(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	wc.Record(types.AgentResult{
		AgentName: "report",
		Success:   true,
		Output:    types.TextOutput("body"),
		Timestamp: time.Now().UTC(),
	})

	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, wc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != wc.ID || got.WorkflowName != "daily" {
		t.Errorf("identity mismatch: %+v", got)
	}
	if got.Data["report"] == nil || got.Data["report"].Text != "body" {
		t.Errorf("data did not survive persistence: %+v", got.Data)
	}
}

func TestFileStore_GetNotFound(t *testing.T) {
	store := newFileStore(t)

	_, err := store.Get(context.Background(), "missing-id")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileStore_PutOverwrites(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	wc.Status = types.StatusRunning
	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	wc.Status = types.StatusCompleted
	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := store.Get(ctx, wc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("expected overwritten status, got %q", got.Status)
	}
}

func TestFileStore_GetIsIdempotent(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, err := store.Get(ctx, wc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := store.Get(ctx, wc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Error("repeated reads should return identical documents")
	}
}

func TestFileStore_ListNewestFirst(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	older := types.NewWorkflowContext("daily")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := types.NewWorkflowContext("daily")

	if err := store.Put(ctx, older); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, newer); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(list))
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Error("expected newest-first ordering")
	}
}

func TestFileStore_Delete(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, wc.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, wc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, wc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestFileStore_RejectsUnsafeID(t *testing.T) {
	store := newFileStore(t)
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	wc.ID = "../escape"
	if err := store.Put(ctx, wc); err == nil {
		t.Error("expected error for unsafe id")
	}
	if _, err := store.Get(ctx, "../escape"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unsafe id, got %v", err)
	}
}
