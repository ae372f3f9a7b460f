package statestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(ctx, wc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != wc.ID {
		t.Errorf("expected id %q, got %q", wc.ID, got.ID)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	wc := types.NewWorkflowContext("daily")
	if err := store.Put(ctx, wc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, _ := store.Get(ctx, wc.ID)
	first.Status = types.StatusFailed

	second, _ := store.Get(ctx, wc.ID)
	if second.Status == types.StatusFailed {
		t.Error("mutating a returned context must not affect stored state")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	older := types.NewWorkflowContext("daily")
	older.CreatedAt = time.Now().UTC().Add(-time.Minute)
	newer := types.NewWorkflowContext("daily")

	store.Put(ctx, older)
	store.Put(ctx, newer)

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Error("expected newest-first ordering")
	}
}
