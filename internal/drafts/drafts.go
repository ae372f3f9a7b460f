// Package drafts stores social-post drafts through the approval flow:
// a pending area for drafts awaiting review and an approved area the
// user can publish from.
package drafts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no draft exists for the workflow id.
var ErrNotFound = errors.New("draft not found")

// Store keeps one pending and at most one approved draft per workflow id.
// Files are keyed by workflow id alone so a run that crosses a date
// boundary between suspension and approval still resolves its draft.
type Store struct {
	pendingDir  string
	approvedDir string
}

// NewStore creates both directories if needed.
func NewStore(pendingDir, approvedDir string) (*Store, error) {
	for _, dir := range []string{pendingDir, approvedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create drafts dir: %w", err)
		}
	}
	return &Store{pendingDir: pendingDir, approvedDir: approvedDir}, nil
}

func safeID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\.")
}

func (s *Store) pendingPath(id string) string {
	return filepath.Join(s.pendingDir, "draft_"+id+".txt")
}

func (s *Store) approvedPath(id string) string {
	return filepath.Join(s.approvedDir, "approved_"+id+".txt")
}

// SavePending writes the draft awaiting approval.
func (s *Store) SavePending(workflowID, content string) error {
	if !safeID(workflowID) {
		return fmt.Errorf("invalid workflow id %q", workflowID)
	}
	if err := os.WriteFile(s.pendingPath(workflowID), []byte(content), 0o644); err != nil {
		return fmt.Errorf("save pending draft: %w", err)
	}
	return nil
}

// LoadPending returns the pending draft content.
func (s *Store) LoadPending(workflowID string) (string, error) {
	if !safeID(workflowID) {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(s.pendingPath(workflowID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load pending draft: %w", err)
	}
	return string(data), nil
}

// DeletePending removes the pending draft. Missing drafts are not an
// error: rejection must succeed even if the file is already gone.
func (s *Store) DeletePending(workflowID string) error {
	if !safeID(workflowID) {
		return nil
	}
	if err := os.Remove(s.pendingPath(workflowID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete pending draft: %w", err)
	}
	return nil
}

// Approve promotes the pending draft to the approved area and removes
// the pending entry.
func (s *Store) Approve(workflowID string) error {
	content, err := s.LoadPending(workflowID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.approvedPath(workflowID), []byte(content), 0o644); err != nil {
		return fmt.Errorf("save approved draft: %w", err)
	}
	return s.DeletePending(workflowID)
}

// LoadApproved returns the approved draft content.
func (s *Store) LoadApproved(workflowID string) (string, error) {
	if !safeID(workflowID) {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(s.approvedPath(workflowID))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load approved draft: %w", err)
	}
	return string(data), nil
}
