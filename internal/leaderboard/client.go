// Package leaderboard fetches bettor rankings from an external indexer and
// degrades to bundled sample data when the indexer is absent or down.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
)

const defaultTimeout = 10 * time.Second

// maxBodyBytes bounds the indexer response size.
const maxBodyBytes = 4 << 20

// Client is the REST client for the leaderboard indexer.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a leaderboard Client. url may be empty, in which case
// Load always serves the sample rankings. A nil httpClient gets a default
// with a 10s timeout.
func NewClient(url string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		logger:     logger.With("component", "leaderboard"),
	}
}

// Load returns the current leaderboard. When no indexer is configured it
// returns the sample rankings; when the indexer is configured but the fetch
// fails it returns the sample rankings with Unavailable set, so callers can
// surface the degradation without losing the page.
func (c *Client) Load(ctx context.Context) domain.Leaderboard {
	if c.url == "" {
		return domain.Leaderboard{
			Entries: sampleEntries(),
			Source:  domain.LeaderboardSourceSample,
		}
	}

	entries, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("indexer unavailable, serving sample leaderboard", "error", err)
		return domain.Leaderboard{
			Entries:     sampleEntries(),
			Source:      domain.LeaderboardSourceSample,
			Unavailable: true,
		}
	}

	return domain.Leaderboard{
		Entries: entries,
		Source:  domain.LeaderboardSourceLive,
	}
}

func (c *Client) fetch(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("leaderboard: read body: %w", err)
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("leaderboard: decode body: %w", err)
	}
	return entries, nil
}
