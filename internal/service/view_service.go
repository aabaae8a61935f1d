// Package service holds the read and write orchestration between the chain
// registry, the query cache, and the evidence store.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// LeaderboardSource supplies ranked predictors. It never fails; degraded
// sources mark the result instead.
type LeaderboardSource interface {
	Load(ctx context.Context) domain.Leaderboard
}

// ViewService serves all read queries. Every query goes through the shared
// cache; on a miss the chain is consulted and the result backfilled. Readers
// never invalidate entries, they only expire or are removed by a settled
// mutation.
type ViewService struct {
	reader      domain.RegistryReader
	token       domain.Token
	cache       domain.QueryCache
	leaderboard LeaderboardSource
	clock       domain.Clock
	ttl         time.Duration
	logger      *slog.Logger
}

// NewViewService creates a ViewService. ttl bounds how stale any cached
// answer can get even if every invalidation is missed.
func NewViewService(
	reader domain.RegistryReader,
	token domain.Token,
	cache domain.QueryCache,
	lb LeaderboardSource,
	clock domain.Clock,
	ttl time.Duration,
	logger *slog.Logger,
) *ViewService {
	return &ViewService{
		reader:      reader,
		token:       token,
		cache:       cache,
		leaderboard: lb,
		clock:       clock,
		ttl:         ttl,
		logger:      logger.With("component", "view_service"),
	}
}

// FetchAllMarkets returns every market ordered by ascending id. Markets whose
// individual chain read failed are absent from the result; the call fails
// only when the market count or the whole batch round fails.
func (s *ViewService) FetchAllMarkets(ctx context.Context) ([]domain.Market, error) {
	if data, err := s.cache.Get(ctx, domain.MarketsKey()); err == nil {
		var markets []domain.Market
		if err := json.Unmarshal(data, &markets); err == nil {
			return markets, nil
		}
		// Undecodable entry, fall through and refetch.
	}

	count, err := s.reader.MarketCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("view: market count: %w", err)
	}
	if count == 0 {
		return []domain.Market{}, nil
	}

	ids := make([]uint64, count)
	for i := range ids {
		ids[i] = uint64(i)
	}

	byID, err := s.reader.Markets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("view: fetch markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(byID))
	for _, m := range byID {
		markets = append(markets, m)
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].ID < markets[j].ID })

	s.backfill(ctx, domain.MarketsKey(), markets)
	return markets, nil
}

// GetMarket returns a single market, or ErrNotFound when the id is beyond
// the registry or its read failed.
func (s *ViewService) GetMarket(ctx context.Context, id uint64) (domain.Market, error) {
	if data, err := s.cache.Get(ctx, domain.MarketKey(id)); err == nil {
		var m domain.Market
		if err := json.Unmarshal(data, &m); err == nil {
			return m, nil
		}
	}

	byID, err := s.reader.Markets(ctx, []uint64{id})
	if err != nil {
		return domain.Market{}, fmt.Errorf("view: fetch market %d: %w", id, err)
	}
	m, ok := byID[id]
	if !ok {
		return domain.Market{}, fmt.Errorf("view: market %d: %w", id, domain.ErrNotFound)
	}

	s.backfill(ctx, domain.MarketKey(id), m)
	return m, nil
}

// FetchWagersFor returns the bettor's positions on the given markets, keyed
// by market id. Cached positions are reused; only misses hit the chain, in a
// single batched round. Positions that could not be read are absent, which
// renders the same as having no position.
func (s *ViewService) FetchWagersFor(ctx context.Context, bettor string, ids []uint64) (map[uint64]domain.Wager, error) {
	wagers := make(map[uint64]domain.Wager, len(ids))
	var misses []uint64

	for _, id := range ids {
		data, err := s.cache.Get(ctx, domain.WagerKey(id, bettor))
		if err != nil {
			misses = append(misses, id)
			continue
		}
		var w domain.Wager
		if err := json.Unmarshal(data, &w); err != nil {
			misses = append(misses, id)
			continue
		}
		wagers[id] = w
	}

	if len(misses) == 0 {
		return wagers, nil
	}

	fetched, err := s.reader.Wagers(ctx, bettor, misses)
	if err != nil {
		return nil, fmt.Errorf("view: fetch wagers for %s: %w", bettor, err)
	}
	for id, w := range fetched {
		wagers[id] = w
		s.backfill(ctx, domain.WagerKey(id, bettor), w)
	}
	return wagers, nil
}

// Scope filters for MarketsWithWagers.
const (
	ScopeAll     = "all"
	ScopeActive  = "active"
	ScopeSettled = "settled"
)

// MarketsWithWagers returns markets in the requested scope, each annotated
// with derived display state and, when bettor is non-empty, that bettor's
// position. A missing annotation means the position is unknown, not zero.
func (s *ViewService) MarketsWithWagers(ctx context.Context, bettor, scope string) ([]domain.MarketWithWager, error) {
	markets, err := s.FetchAllMarkets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	switch scope {
	case ScopeActive:
		markets, _ = partitioned(markets, now, true)
	case ScopeSettled:
		markets, _ = partitioned(markets, now, false)
	case ScopeAll, "":
	default:
		return nil, fmt.Errorf("view: unknown scope %q: %w", scope, domain.ErrValidation)
	}

	var wagers map[uint64]domain.Wager
	if bettor != "" {
		ids := make([]uint64, len(markets))
		for i, m := range markets {
			ids[i] = m.ID
		}
		wagers, err = s.FetchWagersFor(ctx, bettor, ids)
		if err != nil {
			// Positions are an annotation; the market list still renders.
			s.logger.Warn("wager annotation unavailable", "bettor", bettor, "error", err)
			wagers = nil
		}
	}

	out := make([]domain.MarketWithWager, len(markets))
	for i, m := range markets {
		out[i] = domain.MarketWithWager{
			Market:  m,
			Derived: domain.Derive(m, now),
		}
		if w, ok := wagers[m.ID]; ok {
			wCopy := w
			out[i].Wager = &wCopy
		}
	}
	return out, nil
}

func partitioned(markets []domain.Market, now time.Time, active bool) ([]domain.Market, []domain.Market) {
	act, set := domain.Partition(markets, now)
	if active {
		return act, set
	}
	return set, act
}

// PreviewPayout estimates the payout for a hypothetical stake on a market's
// side, using current pool sizes.
func (s *ViewService) PreviewPayout(ctx context.Context, marketID uint64, side domain.Side, stake *big.Int) (*big.Int, error) {
	m, err := s.GetMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if m.Status != domain.StatusOpen {
		return nil, fmt.Errorf("view: market %d is not open: %w", marketID, domain.ErrValidation)
	}
	return domain.PreviewPayout(side, stake, m.YesPool, m.NoPool)
}

// Balance returns the settlement-token balance of an address, cached.
func (s *ViewService) Balance(ctx context.Context, address string) (*big.Int, error) {
	if data, err := s.cache.Get(ctx, domain.BalanceKey(address)); err == nil {
		if bal, ok := new(big.Int).SetString(string(data), 10); ok {
			return bal, nil
		}
	}

	bal, err := s.token.BalanceOf(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("view: balance of %s: %w", address, err)
	}
	if err := s.cache.Set(ctx, domain.BalanceKey(address), []byte(bal.String()), s.ttl); err != nil {
		s.logger.Warn("cache backfill failed", "key", domain.BalanceKey(address), "error", err)
	}
	return bal, nil
}

// Leaderboard returns the ranked predictors. Live results are cached; sample
// fallbacks are not, so a recovering indexer is picked up promptly.
func (s *ViewService) Leaderboard(ctx context.Context) domain.Leaderboard {
	if data, err := s.cache.Get(ctx, domain.LeaderboardKey()); err == nil {
		var lb domain.Leaderboard
		if err := json.Unmarshal(data, &lb); err == nil {
			return lb
		}
	}

	lb := s.leaderboard.Load(ctx)
	if lb.Source == domain.LeaderboardSourceLive {
		s.backfill(ctx, domain.LeaderboardKey(), lb)
	}
	return lb
}

// backfill writes a freshly fetched value to the cache. Failures are logged
// and swallowed; serving the fetched value matters more than caching it.
func (s *ViewService) backfill(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("cache backfill marshal failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("cache backfill failed", "key", key, "error", err)
	}
}
