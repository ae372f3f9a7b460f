// Package collectors gathers market, social, derivatives, and on-chain
// data from public endpoints. Collectors are best-effort I/O wrappers:
// a failing collector reports an error in its result and never crashes
// the agent that owns it.
package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/Eugenepoly/market-agent/internal/retention"
)

// Result is one collection pass from one source.
type Result struct {
	Collector string           `json:"collector"`
	Source    string           `json:"source"`
	Success   bool             `json:"success"`
	Items     []map[string]any `json:"items,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Collector fetches data from one external source.
type Collector interface {
	Name() string
	Collect(ctx context.Context) Result
}

func failure(name, source string, err error) Result {
	return Result{
		Collector: name,
		Source:    source,
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	}
}

func success(name, source string, items []map[string]any) Result {
	return Result{
		Collector: name,
		Source:    source,
		Success:   true,
		Items:     items,
		Timestamp: time.Now().UTC(),
	}
}

// httpFetcher is the shared HTTP plumbing: one client, one rate limiter
// per source, JSON decoding into the caller's shape.
type httpFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

func newHTTPFetcher(requestsPerSecond float64) *httpFetcher {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &httpFetcher{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
	}
}

func (f *httpFetcher) getJSON(ctx context.Context, url string, out any) error {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "market-agent/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SaveSnapshot writes a result under dataDir with an hourly timestamp in
// the name and applies the retention policy for the collector's prefix.
// Best-effort: callers ignore the error for workflow purposes.
func SaveSnapshot(dataDir string, result Result, maxFiles int) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	prefix := result.Collector + "_"
	name := fmt.Sprintf("%s%s.json", prefix, result.Timestamp.Format("2006-01-02_15"))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	if maxFiles > 0 {
		retention.Policy{MaxFiles: maxFiles}.Apply(dataDir, prefix)
	}
	return path, nil
}
