package leaderboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sainath5001/walrustruth/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLoad_NoIndexerConfigured(t *testing.T) {
	c := NewClient("", nil, discard())

	lb := c.Load(context.Background())
	assert.Equal(t, domain.LeaderboardSourceSample, lb.Source)
	assert.False(t, lb.Unavailable)
	require.NotEmpty(t, lb.Entries)
	assert.Equal(t, "0xWalrusOracle", lb.Entries[0].Address)
}

func TestLoad_LiveIndexer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]domain.LeaderboardEntry{
			{Address: "0xabc", TotalWinnings: "99.00", Accuracy: 0.5},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), discard())

	lb := c.Load(context.Background())
	assert.Equal(t, domain.LeaderboardSourceLive, lb.Source)
	assert.False(t, lb.Unavailable)
	require.Len(t, lb.Entries, 1)
	assert.Equal(t, "0xabc", lb.Entries[0].Address)
}

func TestLoad_IndexerDown_FallsBackToSample(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), discard())

	lb := c.Load(context.Background())
	assert.Equal(t, domain.LeaderboardSourceSample, lb.Source)
	assert.True(t, lb.Unavailable)
	assert.NotEmpty(t, lb.Entries)
}

func TestLoad_BadJSON_FallsBackToSample(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client(), discard())

	lb := c.Load(context.Background())
	assert.Equal(t, domain.LeaderboardSourceSample, lb.Source)
	assert.True(t, lb.Unavailable)
}
