package domain

// LeaderboardResult is one market outcome in a predictor's recent history.
type LeaderboardResult struct {
	MarketID string `json:"id"`
	Result   string `json:"result"`
}

// LeaderboardEntry is one ranked predictor from the external leaderboard.
type LeaderboardEntry struct {
	Address       string              `json:"address"`
	TotalWinnings string              `json:"totalWinnings"`
	Accuracy      float64             `json:"accuracy"`
	RecentMarkets []LeaderboardResult `json:"recentMarkets"`
}

// Leaderboard sources, recorded on every response so consumers can tell live
// data from the static sample set.
const (
	LeaderboardSourceLive   = "live"
	LeaderboardSourceSample = "sample"
)

// Leaderboard is the ranked predictor list together with its provenance.
// Unavailable is set when a live endpoint is configured but the fetch failed
// and the sample data is standing in for it.
type Leaderboard struct {
	Entries     []LeaderboardEntry `json:"entries"`
	Source      string             `json:"source"`
	Unavailable bool               `json:"unavailable,omitempty"`
}
