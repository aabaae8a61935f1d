package leaderboard

import "github.com/sainath5001/walrustruth/internal/domain"

// sampleEntries returns the bundled demo rankings shown when no indexer is
// reachable. A fresh slice is returned each call so callers can mutate their
// copy freely.
func sampleEntries() []domain.LeaderboardEntry {
	return []domain.LeaderboardEntry{
		{
			Address:       "0xWalrusOracle",
			TotalWinnings: "12450.00",
			Accuracy:      0.87,
			RecentMarkets: []domain.LeaderboardResult{
				{MarketID: "12", Result: "won"},
				{MarketID: "11", Result: "won"},
				{MarketID: "9", Result: "lost"},
			},
		},
		{
			Address:       "0xTruthSeeker",
			TotalWinnings: "8320.50",
			Accuracy:      0.74,
			RecentMarkets: []domain.LeaderboardResult{
				{MarketID: "12", Result: "lost"},
				{MarketID: "10", Result: "won"},
				{MarketID: "8", Result: "won"},
			},
		},
		{
			Address:       "0xEvidenceMaxi",
			TotalWinnings: "5105.25",
			Accuracy:      0.69,
			RecentMarkets: []domain.LeaderboardResult{
				{MarketID: "11", Result: "won"},
				{MarketID: "9", Result: "lost"},
				{MarketID: "7", Result: "won"},
			},
		},
	}
}
