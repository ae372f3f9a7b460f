// Package reports archives generated market reports and deep analyses.
// Archiving is a best-effort side effect of the workflow; failures here
// never fail an agent or the run.
package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Eugenepoly/market-agent/internal/retention"
)

// Archive persists a report or analysis and returns where it landed.
type Archive interface {
	SaveReport(ctx context.Context, content string) (string, error)
	SaveAnalysis(ctx context.Context, content string) (string, error)
}

func reportFilename(now time.Time) string {
	return fmt.Sprintf("Market_Update_%s.txt", now.Format("2006-01-02"))
}

func analysisFilename(now time.Time) string {
	return fmt.Sprintf("Deep_Analysis_%s.txt", now.Format("2006-01-02"))
}

// LocalArchive writes reports under a directory tree, with analyses in
// an analysis/ subdirectory, and applies the retention policy per prefix.
type LocalArchive struct {
	dir       string
	retention retention.Policy
	now       func() time.Time
}

// NewLocalArchive creates the output directory if needed. maxFiles bounds
// how many archived files are kept per prefix (0 disables rotation).
func NewLocalArchive(dir string, maxFiles int) (*LocalArchive, error) {
	if err := os.MkdirAll(filepath.Join(dir, "analysis"), 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &LocalArchive{
		dir:       dir,
		retention: retention.Policy{MaxFiles: maxFiles},
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (a *LocalArchive) save(dir, name, content string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func (a *LocalArchive) SaveReport(ctx context.Context, content string) (string, error) {
	path, err := a.save(a.dir, reportFilename(a.now()), content)
	if err != nil {
		return "", err
	}
	if a.retention.MaxFiles > 0 {
		a.retention.Apply(a.dir, "Market_Update_")
	}
	return path, nil
}

func (a *LocalArchive) SaveAnalysis(ctx context.Context, content string) (string, error) {
	analysisDir := filepath.Join(a.dir, "analysis")
	path, err := a.save(analysisDir, analysisFilename(a.now()), content)
	if err != nil {
		return "", err
	}
	if a.retention.MaxFiles > 0 {
		a.retention.Apply(analysisDir, "Deep_Analysis_")
	}
	return path, nil
}
