package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Eugenepoly/market-agent/internal/collectors"
)

// snapshotMaxFiles bounds how many hourly snapshots are kept per
// collector under the data dir.
const snapshotMaxFiles = 24

// collect runs one collector and snapshots its result under dataDir.
// Snapshot failures are logged and ignored; the workflow never depends
// on them.
func collect(ctx context.Context, c collectors.Collector, dataDir string, logger *slog.Logger) collectors.Result {
	result := c.Collect(ctx)
	if dataDir != "" {
		if _, err := collectors.SaveSnapshot(dataDir, result, snapshotMaxFiles); err != nil {
			logger.Warn("snapshot write failed", "collector", c.Name(), "error", err)
		}
	}
	return result
}

// formatResult renders a collector result as prompt-ready text.
func formatResult(result collectors.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#### %s (%s)\n", result.Collector, result.Source)
	if !result.Success {
		fmt.Fprintf(&b, "- collection failed: %s\n", result.Error)
		return b.String()
	}
	for _, item := range result.Items {
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, item[k]))
		}
		fmt.Fprintf(&b, "- %s\n", strings.Join(parts, ", "))
	}
	return b.String()
}
