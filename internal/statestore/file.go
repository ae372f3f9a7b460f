package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Eugenepoly/market-agent/pkg/types"
)

// FileStore persists one JSON document per workflow id under a state
// directory. Writes go through a temp file and atomic rename, so readers
// never observe a partially written document. A crash between workflow
// steps loses at most the in-flight step.
type FileStore struct {
	dir string
}

// NewFileStore creates the state directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, wc *types.WorkflowContext) error {
	if !validID(wc.ID) {
		return fmt.Errorf("invalid workflow id %q", wc.ID)
	}

	data, err := json.MarshalIndent(wc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, wc.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(wc.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*types.WorkflowContext, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var wc types.WorkflowContext
	if err := json.Unmarshal(data, &wc); err != nil {
		return nil, fmt.Errorf("decode state file for %s: %w", id, err)
	}
	return &wc, nil
}

func (s *FileStore) List(ctx context.Context) ([]*types.WorkflowContext, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state dir: %w", err)
	}

	var out []*types.WorkflowContext
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		wc, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// Skip unreadable documents rather than failing the listing.
			continue
		}
		out = append(out, wc)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete state file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
