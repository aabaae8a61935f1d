package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolRatio_EvenSplit(t *testing.T) {
	yes, no := PoolRatio(big.NewInt(500), big.NewInt(500))
	assert.Equal(t, 50.0, yes)
	assert.Equal(t, 50.0, no)
}

func TestPoolRatio_EmptyMarketReadsFiftyFifty(t *testing.T) {
	yes, no := PoolRatio(big.NewInt(0), big.NewInt(0))
	assert.Equal(t, 50.0, yes)
	assert.Equal(t, 50.0, no)

	// Nil pools behave like zero pools.
	yes, no = PoolRatio(nil, nil)
	assert.Equal(t, 50.0, yes)
	assert.Equal(t, 50.0, no)
}

func TestPoolRatio_SumsToOneHundred(t *testing.T) {
	cases := [][2]int64{
		{1, 3},
		{7, 0},
		{0, 11},
		{123456789, 987654321},
		{1, 999999999},
	}
	for _, c := range cases {
		yes, no := PoolRatio(big.NewInt(c[0]), big.NewInt(c[1]))
		assert.Equal(t, 100.0, yes+no, "pools %d/%d", c[0], c[1])
		assert.GreaterOrEqual(t, yes, 0.0)
		assert.LessOrEqual(t, yes, 100.0)
	}
}

func TestPoolRatio_LargePoolsKeepPrecision(t *testing.T) {
	// Pools far beyond float64's 53-bit integer range: one third in
	// 10^30-scale units must still come out as 33.33%.
	yesPool, _ := new(big.Int).SetString("1000000000000000000000000000000", 10)
	noPool := new(big.Int).Mul(yesPool, big.NewInt(2))

	yes, no := PoolRatio(yesPool, noPool)
	assert.Equal(t, 33.33, yes)
	assert.Equal(t, 66.67, no)
}

func TestCountdown_Buckets(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{49*time.Hour + 30*time.Minute, "2d 1h"},
		{25 * time.Hour, "1d 1h"},
		{3*time.Hour + 20*time.Minute, "3h 20m"},
		{61 * time.Minute, "1h 1m"},
		{5*time.Minute + 9*time.Second, "5m 9s"},
		{59 * time.Second, "59s"},
		{1 * time.Second, "1s"},
	}
	for _, c := range cases {
		display, expired := Countdown(now.Add(c.remaining), now)
		assert.False(t, expired, c.want)
		assert.Equal(t, c.want, display)
	}
}

func TestCountdown_PastDeadlineIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, past := range []time.Duration{0, time.Second, time.Hour, 400 * 24 * time.Hour} {
		display, expired := Countdown(now.Add(-past), now)
		assert.True(t, expired)
		assert.Equal(t, "Expired", display)
	}
}

func TestPartition_OpenMarketPastDeadlineIsSettled(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := Market{ID: 1, Status: StatusOpen, Outcome: OutcomeUndecided, Deadline: now.Add(time.Hour)}
	// Still Open and Undecided, but the deadline passed one second ago.
	lapsed := Market{ID: 2, Status: StatusOpen, Outcome: OutcomeUndecided, Deadline: now.Add(-time.Second)}
	resolved := Market{ID: 3, Status: StatusResolved, Outcome: OutcomeYes, Deadline: now.Add(time.Hour)}

	active, settled := Partition([]Market{open, lapsed, resolved}, now)

	assert.Len(t, active, 1)
	assert.Equal(t, uint64(1), active[0].ID)
	assert.Len(t, settled, 2)
	assert.Equal(t, uint64(2), settled[0].ID)
	assert.Equal(t, uint64(3), settled[1].ID)
}

func TestDerive_AnnotatesMarket(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := Market{
		ID:       7,
		Status:   StatusOpen,
		Deadline: now.Add(2 * time.Hour),
		YesPool:  big.NewInt(300),
		NoPool:   big.NewInt(100),
	}

	view := Derive(m, now)
	assert.Equal(t, 75.0, view.YesPct)
	assert.Equal(t, 25.0, view.NoPct)
	assert.Equal(t, "2h 0m", view.Countdown)
	assert.False(t, view.Expired)
	assert.True(t, view.Active)
}
