package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sainath5001/walrustruth/internal/domain"
)

func market(id uint64, deadline time.Time, status domain.Status) domain.Market {
	return domain.Market{
		ID:          id,
		Title:       "m",
		Deadline:    deadline,
		Status:      status,
		Outcome:     domain.OutcomeUndecided,
		YesPool:     big.NewInt(100),
		NoPool:      big.NewInt(100),
		BettorCount: big.NewInt(1),
	}
}

func newViewService(reg *fakeRegistry, cache *fakeCache, clock *fakeClock) *ViewService {
	return NewViewService(reg, newFakeToken(0), cache, staticLeaderboard{}, clock, 30*time.Second, discard())
}

func TestFetchAllMarkets_DropsFailedEntriesAndSorts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := newFakeRegistry()
	reg.count = 3
	// Market 1 is unreadable and simply missing from the batch result.
	reg.markets[0] = market(0, now.Add(time.Hour), domain.StatusOpen)
	reg.markets[2] = market(2, now.Add(time.Hour), domain.StatusOpen)

	svc := newViewService(reg, newFakeCache(), &fakeClock{now: now})

	markets, err := svc.FetchAllMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, uint64(0), markets[0].ID)
	assert.Equal(t, uint64(2), markets[1].ID)
}

func TestFetchAllMarkets_EmptyRegistry(t *testing.T) {
	reg := newFakeRegistry()
	svc := newViewService(reg, newFakeCache(), &fakeClock{now: time.Now()})

	markets, err := svc.FetchAllMarkets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, markets)
	// No batch read should have been issued for an empty registry.
	assert.Empty(t, reg.readIDs)
}

func TestFetchAllMarkets_ServedFromCacheOnSecondCall(t *testing.T) {
	now := time.Now()
	reg := newFakeRegistry()
	reg.count = 1
	reg.markets[0] = market(0, now.Add(time.Hour), domain.StatusOpen)

	svc := newViewService(reg, newFakeCache(), &fakeClock{now: now})

	_, err := svc.FetchAllMarkets(context.Background())
	require.NoError(t, err)
	_, err = svc.FetchAllMarkets(context.Background())
	require.NoError(t, err)

	assert.Len(t, reg.readIDs, 1, "second call must not hit the chain")
}

func TestGetMarket_NotFound(t *testing.T) {
	reg := newFakeRegistry()
	svc := newViewService(reg, newFakeCache(), &fakeClock{now: time.Now()})

	_, err := svc.GetMarket(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchWagersFor_OnlyMissesHitChain(t *testing.T) {
	now := time.Now()
	reg := newFakeRegistry()
	reg.wagers[1] = domain.Wager{YesAmount: big.NewInt(10), NoAmount: big.NewInt(0)}
	reg.wagers[2] = domain.Wager{YesAmount: big.NewInt(0), NoAmount: big.NewInt(5)}

	cache := newFakeCache()
	svc := newViewService(reg, cache, &fakeClock{now: now})

	first, err := svc.FetchWagersFor(context.Background(), "0xAbC", []uint64{1, 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Len(t, reg.readIDs, 1)

	// All entries now cached; a second fetch must not touch the chain.
	second, err := svc.FetchWagersFor(context.Background(), "0xabc", []uint64{1, 2})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Len(t, reg.readIDs, 1)
}

func TestMarketsWithWagers_ScopeAndAnnotation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg := newFakeRegistry()
	reg.count = 2
	reg.markets[0] = market(0, now.Add(time.Hour), domain.StatusOpen)
	reg.markets[1] = market(1, now.Add(-time.Hour), domain.StatusOpen) // past deadline
	reg.wagers[0] = domain.Wager{YesAmount: big.NewInt(7), NoAmount: big.NewInt(0)}
	reg.wagers[1] = domain.Wager{YesAmount: big.NewInt(0), NoAmount: big.NewInt(0)}

	svc := newViewService(reg, newFakeCache(), &fakeClock{now: now})

	active, err := svc.MarketsWithWagers(context.Background(), "0xabc", ScopeActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, uint64(0), active[0].ID)
	assert.True(t, active[0].Derived.Active)
	require.NotNil(t, active[0].Wager)
	assert.Equal(t, int64(7), active[0].Wager.YesAmount.Int64())

	settled, err := svc.MarketsWithWagers(context.Background(), "", ScopeSettled)
	require.NoError(t, err)
	require.Len(t, settled, 1)
	assert.Equal(t, uint64(1), settled[0].ID)
	assert.Nil(t, settled[0].Wager, "no bettor, no annotation")
}

func TestMarketsWithWagers_WagerFailureStillServesMarkets(t *testing.T) {
	now := time.Now()
	reg := newFakeRegistry()
	reg.count = 1
	reg.markets[0] = market(0, now.Add(time.Hour), domain.StatusOpen)

	cache := newFakeCache()
	svc := newViewService(reg, cache, &fakeClock{now: now})

	// Prime the market list, then make subsequent (wager) reads fail.
	_, err := svc.FetchAllMarkets(context.Background())
	require.NoError(t, err)
	reg.readErr = errBoom

	out, err := svc.MarketsWithWagers(context.Background(), "0xabc", ScopeAll)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Wager)
}

func TestMarketsWithWagers_UnknownScope(t *testing.T) {
	svc := newViewService(newFakeRegistry(), newFakeCache(), &fakeClock{now: time.Now()})

	_, err := svc.MarketsWithWagers(context.Background(), "", "everything")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPreviewPayout_RejectsResolvedMarket(t *testing.T) {
	now := time.Now()
	reg := newFakeRegistry()
	reg.count = 1
	m := market(0, now.Add(-time.Hour), domain.StatusResolved)
	m.Outcome = domain.OutcomeYes
	reg.markets[0] = m

	svc := newViewService(reg, newFakeCache(), &fakeClock{now: now})

	_, err := svc.PreviewPayout(context.Background(), 0, domain.SideYes, big.NewInt(10))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPreviewPayout_OpenMarket(t *testing.T) {
	now := time.Now()
	reg := newFakeRegistry()
	reg.count = 1
	reg.markets[0] = market(0, now.Add(time.Hour), domain.StatusOpen)

	svc := newViewService(reg, newFakeCache(), &fakeClock{now: now})

	payout, err := svc.PreviewPayout(context.Background(), 0, domain.SideYes, big.NewInt(100))
	require.NoError(t, err)
	// stake 100 joins yes pool 100 against no pool 100: 100*(300)/200 = 150.
	assert.Equal(t, int64(150), payout.Int64())
}

func TestLeaderboard_CachesLiveOnly(t *testing.T) {
	cache := newFakeCache()
	live := staticLeaderboard{lb: domain.Leaderboard{
		Entries: []domain.LeaderboardEntry{{Address: "0xabc"}},
		Source:  domain.LeaderboardSourceLive,
	}}
	svc := NewViewService(newFakeRegistry(), newFakeToken(0), cache, live, &fakeClock{now: time.Now()}, time.Minute, discard())

	lb := svc.Leaderboard(context.Background())
	assert.Equal(t, domain.LeaderboardSourceLive, lb.Source)
	_, err := cache.Get(context.Background(), domain.LeaderboardKey())
	assert.NoError(t, err, "live leaderboard should be cached")

	sample := staticLeaderboard{lb: domain.Leaderboard{Source: domain.LeaderboardSourceSample, Unavailable: true}}
	cache2 := newFakeCache()
	svc2 := NewViewService(newFakeRegistry(), newFakeToken(0), cache2, sample, &fakeClock{now: time.Now()}, time.Minute, discard())

	_ = svc2.Leaderboard(context.Background())
	_, err = cache2.Get(context.Background(), domain.LeaderboardKey())
	assert.ErrorIs(t, err, domain.ErrNotFound, "sample fallback must not be cached")
}
