package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.invalidated = append(c.invalidated, keys...)
	return nil
}

func (c *fakeCache) invalidatedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

type fakeBus struct {
	mu        sync.Mutex
	published [][]byte
}

func (b *fakeBus) Publish(_ context.Context, _ string, payload []byte) error {
	b.mu.Lock()
	b.published = append(b.published, payload)
	b.mu.Unlock()
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBus) publishedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = true
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}

// fakeTx settles when its wait channel is closed, or immediately when the
// channel is nil.
type fakeTx struct {
	hash    string
	waitErr error
	waitCh  chan struct{}
}

func (t *fakeTx) Hash() string { return t.hash }

func (t *fakeTx) Wait(ctx context.Context) error {
	if t.waitCh != nil {
		select {
		case <-t.waitCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return t.waitErr
}

type fakeRegistry struct {
	mu sync.Mutex

	count    uint64
	countErr error
	markets  map[uint64]domain.Market
	wagers   map[uint64]domain.Wager
	readErr  error

	// readIDs records the ids of every batched read.
	readIDs [][]uint64

	calls  []string
	nextTx *fakeTx
	txErr  error

	// hook runs on every write call, outside the lock.
	hook func(call string)
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		markets: make(map[uint64]domain.Market),
		wagers:  make(map[uint64]domain.Wager),
		nextTx:  &fakeTx{hash: "0xtx"},
	}
}

func (r *fakeRegistry) MarketCount(context.Context) (uint64, error) {
	return r.count, r.countErr
}

func (r *fakeRegistry) Markets(_ context.Context, ids []uint64) (map[uint64]domain.Market, error) {
	r.mu.Lock()
	r.readIDs = append(r.readIDs, ids)
	r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	out := make(map[uint64]domain.Market)
	for _, id := range ids {
		if m, ok := r.markets[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (r *fakeRegistry) Wagers(_ context.Context, _ string, ids []uint64) (map[uint64]domain.Wager, error) {
	r.mu.Lock()
	r.readIDs = append(r.readIDs, ids)
	r.mu.Unlock()
	if r.readErr != nil {
		return nil, r.readErr
	}
	out := make(map[uint64]domain.Wager)
	for _, id := range ids {
		if w, ok := r.wagers[id]; ok {
			out[id] = w
		}
	}
	return out, nil
}

func (r *fakeRegistry) record(call string) (domain.Tx, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if r.txErr != nil {
		return nil, r.txErr
	}
	return r.nextTx, nil
}

func (r *fakeRegistry) CreateMarket(_ context.Context, title, _ string, _ time.Time, _ string) (domain.Tx, error) {
	return r.record("createMarket:" + title)
}

func (r *fakeRegistry) PlaceBet(_ context.Context, marketID uint64, side domain.Side, amount *big.Int) (domain.Tx, error) {
	return r.record(fmt.Sprintf("placeBet:%d:%d:%s", marketID, side, amount))
}

func (r *fakeRegistry) SubmitEvidence(_ context.Context, marketID uint64, uri string) (domain.Tx, error) {
	return r.record(fmt.Sprintf("submitEvidence:%d:%s", marketID, uri))
}

func (r *fakeRegistry) ResolveMarket(_ context.Context, marketID uint64, outcome domain.Outcome) (domain.Tx, error) {
	return r.record(fmt.Sprintf("resolveMarket:%d:%s", marketID, outcome))
}

func (r *fakeRegistry) recordedCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeToken struct {
	mu        sync.Mutex
	balance   *big.Int
	allowance *big.Int
	calls     []string
	approveTx *fakeTx

	// hook runs on every recorded call, outside the lock.
	hook func(call string)
}

func newFakeToken(allowance int64) *fakeToken {
	return &fakeToken{
		balance:   big.NewInt(1_000_000),
		allowance: big.NewInt(allowance),
		approveTx: &fakeTx{hash: "0xapprove"},
	}
}

func (t *fakeToken) BalanceOf(context.Context, string) (*big.Int, error) {
	return new(big.Int).Set(t.balance), nil
}

func (t *fakeToken) Allowance(context.Context, string, string) (*big.Int, error) {
	t.mu.Lock()
	t.calls = append(t.calls, "allowance")
	hook := t.hook
	t.mu.Unlock()
	if hook != nil {
		hook("allowance")
	}
	return new(big.Int).Set(t.allowance), nil
}

func (t *fakeToken) Approve(_ context.Context, _ string, amount *big.Int) (domain.Tx, error) {
	t.mu.Lock()
	t.calls = append(t.calls, "approve:"+amount.String())
	t.allowance = new(big.Int).Set(amount)
	hook := t.hook
	t.mu.Unlock()
	if hook != nil {
		hook("approve")
	}
	return t.approveTx, nil
}

func (t *fakeToken) recordedCalls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

type fakeEvidence struct {
	uri string
	err error
}

func (e *fakeEvidence) Upload(_ context.Context, _ string, data io.Reader, _ string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	_, _ = io.Copy(io.Discard, data)
	return e.uri, nil
}

type staticLeaderboard struct {
	lb domain.Leaderboard
}

func (s staticLeaderboard) Load(context.Context) domain.Leaderboard { return s.lb }

var errBoom = errors.New("boom")
