package retention

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func listNames(t *testing.T, dir string) map[string]bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	out := make(map[string]bool)
	for _, e := range entries {
		out[e.Name()] = true
	}
	return out
}

func TestPolicy_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"posts_2026-08-26_10.json",
		"posts_2026-08-27_10.json",
		"posts_2026-08-28_10.json",
		"posts_2026-08-29_10.json",
	)

	removed, err := Policy{MaxFiles: 2}.Apply(dir, "posts_")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	remaining := listNames(t, dir)
	if !remaining["posts_2026-08-28_10.json"] || !remaining["posts_2026-08-29_10.json"] {
		t.Errorf("newest files should remain, got %v", remaining)
	}
}

func TestPolicy_IgnoresOtherPrefixes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"posts_2026-08-28_10.json",
		"posts_2026-08-29_10.json",
		"quotes_2026-08-01_10.json",
	)

	removed, err := Policy{MaxFiles: 1}.Apply(dir, "posts_")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if !listNames(t, dir)["quotes_2026-08-01_10.json"] {
		t.Error("files with another prefix must be untouched")
	}
}

func TestPolicy_UnderLimitNoop(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "posts_a.json")

	removed, err := Policy{MaxFiles: 3}.Apply(dir, "posts_")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("expected no removals, got %d", removed)
	}
}

func TestPolicy_MissingDir(t *testing.T) {
	removed, err := Policy{MaxFiles: 3}.Apply(filepath.Join(t.TempDir(), "nope"), "posts_")
	if err != nil || removed != 0 {
		t.Errorf("missing dir should be a noop, got removed=%d err=%v", removed, err)
	}
}

func TestPolicy_InvalidMax(t *testing.T) {
	if _, err := (Policy{}).Apply(t.TempDir(), "posts_"); err == nil {
		t.Error("expected error for non-positive MaxFiles")
	}
}
