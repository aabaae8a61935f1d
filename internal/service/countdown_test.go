package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_EmitsImmediatelyThenTicks(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: now}
	w := NewCountdownWatcher(clock, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch := w.Watch(ctx, 1, now.Add(90*time.Second))

	first, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, uint64(1), first.MarketID)
	assert.Equal(t, "1m 30s", first.Display)
	assert.False(t, first.Expired)

	clock.advance(10 * time.Second)
	timeout := time.After(time.Second)
	for {
		select {
		case update, ok := <-ch:
			require.True(t, ok)
			if update.Display == "1m 20s" {
				return
			}
		case <-timeout:
			t.Fatal("never observed the advanced countdown")
		}
	}
}

func TestWatch_ClosesAfterExpiredEmission(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: now}
	w := NewCountdownWatcher(clock, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Deadline already passed: one expired emission, then close.
	ch := w.Watch(ctx, 2, now.Add(-time.Minute))

	update, ok := <-ch
	require.True(t, ok)
	assert.True(t, update.Expired)
	assert.Equal(t, "Expired", update.Display)

	_, ok = <-ch
	assert.False(t, ok, "channel must close after the expired emission")
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	now := time.Now()
	clock := &fakeClock{now: now}
	w := NewCountdownWatcher(clock, time.Hour) // never ticks during the test

	ctx, cancel := context.WithCancel(context.Background())
	ch := w.Watch(ctx, 3, now.Add(time.Hour))

	<-ch
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancel")
	}
}
