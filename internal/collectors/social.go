package collectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/Eugenepoly/market-agent/internal/watchlist"
)

// SocialCollector fetches recent posts for watched accounts from the X
// syndication API. Truth Social accounts are fetched through a Mastodon-
// compatible lookup against the instance API.
type SocialCollector struct {
	XBaseURL     string
	TruthBaseURL string
	Accounts     []watchlist.Account

	// PostsPerAccount caps how many posts each account contributes.
	PostsPerAccount int

	fetcher *httpFetcher
}

// NewSocialCollector watches the given accounts.
func NewSocialCollector(accounts []watchlist.Account) *SocialCollector {
	return &SocialCollector{
		XBaseURL:        "https://syndication.twitter.com",
		TruthBaseURL:    "https://truthsocial.com",
		Accounts:        accounts,
		PostsPerAccount: 5,
		fetcher:         newHTTPFetcher(1),
	}
}

func (c *SocialCollector) Name() string { return "posts" }

type timelineResponse struct {
	Body []struct {
		FullText  string `json:"full_text"`
		CreatedAt string `json:"created_at"`
	} `json:"body"`
}

type mastodonStatus struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (c *SocialCollector) Collect(ctx context.Context) Result {
	var items []map[string]any
	var errs []string

	for _, account := range c.Accounts {
		posts, err := c.collectAccount(ctx, account)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s/%s: %v", account.Platform, account.Handle, err))
			continue
		}
		items = append(items, posts...)
	}

	if len(items) == 0 {
		return failure(c.Name(), "social", fmt.Errorf("no posts collected: %s", strings.Join(errs, "; ")))
	}

	result := success(c.Name(), "social", items)
	if len(errs) > 0 {
		// Partial collection still succeeds; keep the failures visible.
		result.Error = strings.Join(errs, "; ")
	}
	return result
}

func (c *SocialCollector) collectAccount(ctx context.Context, account watchlist.Account) ([]map[string]any, error) {
	switch account.Platform {
	case "x":
		return c.collectX(ctx, account)
	case "truth_social":
		return c.collectTruth(ctx, account)
	default:
		return nil, fmt.Errorf("unknown platform %q", account.Platform)
	}
}

func (c *SocialCollector) collectX(ctx context.Context, account watchlist.Account) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/timeline/profile?screen_name=%s", c.XBaseURL, account.Handle)

	var resp timelineResponse
	if err := c.fetcher.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	var posts []map[string]any
	for i, entry := range resp.Body {
		if i >= c.PostsPerAccount {
			break
		}
		posts = append(posts, map[string]any{
			"platform":   "x",
			"handle":     account.Handle,
			"category":   account.Category,
			"text":       entry.FullText,
			"created_at": entry.CreatedAt,
		})
	}
	return posts, nil
}

func (c *SocialCollector) collectTruth(ctx context.Context, account watchlist.Account) ([]map[string]any, error) {
	var acct struct {
		ID string `json:"id"`
	}
	lookupURL := fmt.Sprintf("%s/api/v1/accounts/lookup?acct=%s", c.TruthBaseURL, account.Handle)
	if err := c.fetcher.getJSON(ctx, lookupURL, &acct); err != nil {
		return nil, err
	}

	var statuses []mastodonStatus
	statusURL := fmt.Sprintf("%s/api/v1/accounts/%s/statuses?limit=%d", c.TruthBaseURL, acct.ID, c.PostsPerAccount)
	if err := c.fetcher.getJSON(ctx, statusURL, &statuses); err != nil {
		return nil, err
	}

	var posts []map[string]any
	for _, status := range statuses {
		posts = append(posts, map[string]any{
			"platform":   "truth_social",
			"handle":     account.Handle,
			"category":   account.Category,
			"text":       stripTags(status.Content),
			"created_at": status.CreatedAt,
		})
	}
	return posts, nil
}

// stripTags removes HTML tags from Mastodon-style status content.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
