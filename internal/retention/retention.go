// Package retention implements the max-N-files-per-prefix cleanup policy
// applied to collector snapshots and archived reports.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Policy keeps at most MaxFiles files per name prefix in a directory,
// deleting the oldest. File names carry a sortable timestamp component,
// so lexical order is chronological within a prefix.
type Policy struct {
	MaxFiles int
}

// Apply removes the oldest files sharing the prefix until at most
// MaxFiles remain. It returns the number of files removed. Deletion
// failures on individual files are skipped; retention is best-effort.
func (p Policy) Apply(dir, prefix string) (int, error) {
	if p.MaxFiles <= 0 {
		return 0, fmt.Errorf("retention: MaxFiles must be positive, got %d", p.MaxFiles)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("retention: read dir: %w", err)
	}

	var matched []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), prefix) {
			matched = append(matched, e.Name())
		}
	}
	if len(matched) <= p.MaxFiles {
		return 0, nil
	}

	sort.Strings(matched)

	removed := 0
	for _, name := range matched[:len(matched)-p.MaxFiles] {
		if err := os.Remove(filepath.Join(dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}
