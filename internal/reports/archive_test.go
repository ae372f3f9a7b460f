package reports

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLocalArchive_SaveReport(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewLocalArchive(dir, 0)
	if err != nil {
		t.Fatalf("NewLocalArchive failed: %v", err)
	}
	archive.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	path, err := archive.SaveReport(context.Background(), "report body")
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if !strings.HasSuffix(path, "Market_Update_2026-08-29.txt") {
		t.Errorf("unexpected report path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != "report body" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalArchive_SaveAnalysisInSubdir(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewLocalArchive(dir, 0)
	if err != nil {
		t.Fatalf("NewLocalArchive failed: %v", err)
	}

	path, err := archive.SaveAnalysis(context.Background(), "analysis body")
	if err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "analysis") {
		t.Errorf("analysis should live under analysis/, got %q", path)
	}
}

func TestLocalArchive_Rotation(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewLocalArchive(dir, 2)
	if err != nil {
		t.Fatalf("NewLocalArchive failed: %v", err)
	}

	days := []time.Time{
		time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		archive.now = func() time.Time { return day }
		if _, err := archive.SaveReport(context.Background(), "body"); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var reports []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "Market_Update_") {
			reports = append(reports, e.Name())
		}
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports after rotation, got %v", reports)
	}
	for _, name := range reports {
		if name == "Market_Update_2026-08-26.txt" {
			t.Error("oldest report should have been rotated out")
		}
	}
}
