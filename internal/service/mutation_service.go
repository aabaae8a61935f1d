package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// Operation keys for the single-flight guard. One mutation per key may be in
// flight at a time; a second attempt is rejected, not queued.
func opCreateMarket() string {
	return "create_market"
}

func opBet(marketID uint64) string {
	return fmt.Sprintf("bet:%d", marketID)
}

func opEvidence(marketID uint64) string {
	return fmt.Sprintf("evidence:%d", marketID)
}

func opResolve(marketID uint64) string {
	return fmt.Sprintf("resolve:%d", marketID)
}

func opApprove() string {
	return "approve"
}

// defaultLockTTL bounds how long a crashed mutation can keep its operation
// key locked.
const defaultLockTTL = 2 * time.Minute

// MutationConfig carries the wallet and contract parameters write operations
// need.
type MutationConfig struct {
	// WalletAddress is the acting wallet in lowercase hex, empty when the
	// service runs read-only.
	WalletAddress string

	// RegistryAddress is the spender approved to move stake tokens.
	RegistryAddress string

	// MaxAllowance is the allowance granted on first bet, in token base
	// units. Granting a large allowance once avoids an approval transaction
	// per bet.
	MaxAllowance *big.Int

	// LockTTL is how long an operation key stays locked if the holder dies.
	LockTTL time.Duration
}

// MutationService drives every write operation through the same lifecycle:
// validate, approve when the allowance is short, submit, await finality,
// then invalidate exactly the cache keys the write touched and announce them
// on the bus. Nothing is invalidated for a mutation that fails at any step.
type MutationService struct {
	writer   domain.RegistryWriter
	token    domain.Token
	evidence domain.EvidenceStore
	cache    domain.QueryCache
	bus      domain.EventBus
	gate     domain.AdminGate
	locker   domain.Locker
	clock    domain.Clock
	cfg      MutationConfig
	logger   *slog.Logger

	mu     sync.Mutex
	phases map[string]domain.MutationPhase
}

// NewMutationService creates a MutationService with all collaborators.
func NewMutationService(
	writer domain.RegistryWriter,
	token domain.Token,
	evidence domain.EvidenceStore,
	cache domain.QueryCache,
	bus domain.EventBus,
	gate domain.AdminGate,
	locker domain.Locker,
	clock domain.Clock,
	cfg MutationConfig,
	logger *slog.Logger,
) *MutationService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &MutationService{
		writer:   writer,
		token:    token,
		evidence: evidence,
		cache:    cache,
		bus:      bus,
		gate:     gate,
		locker:   locker,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With("component", "mutation_service"),
		phases:   make(map[string]domain.MutationPhase),
	}
}

// Phase reports where the mutation for an operation key currently is.
// Untracked keys are PhaseIdle.
func (s *MutationService) Phase(opKey string) domain.MutationPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.phases[opKey]; ok {
		return p
	}
	return domain.PhaseIdle
}

func (s *MutationService) setPhase(opKey string, p domain.MutationPhase) {
	s.mu.Lock()
	s.phases[opKey] = p
	s.mu.Unlock()
}

// CreateMarketInput is the payload for CreateMarket.
type CreateMarketInput struct {
	Title       string
	Description string
	Deadline    time.Time
	MetadataURI string
}

// CreateMarket validates and submits a market creation. Only allow-listed
// admin addresses may create markets. On settlement the market list cache
// entry is invalidated.
func (s *MutationService) CreateMarket(ctx context.Context, in CreateMarketInput, caller string) (string, error) {
	opKey := opCreateMarket()
	s.setPhase(opKey, domain.PhaseValidating)

	if !s.gate.Allowed(caller) {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: %s may not create markets: %w", caller, domain.ErrUnauthorized)
	}
	if strings.TrimSpace(in.Title) == "" {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: title is required: %w", domain.ErrValidation)
	}
	if !in.Deadline.After(s.clock.Now()) {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: deadline must be in the future: %w", domain.ErrValidation)
	}

	return s.submit(ctx, opKey, []string{domain.MarketsKey()}, func(ctx context.Context) (domain.Tx, error) {
		s.setPhase(opKey, domain.PhaseSubmitting)
		return s.writer.CreateMarket(ctx, in.Title, in.Description, in.Deadline, in.MetadataURI)
	})
}

// PlaceBet validates and submits a stake on one side of a market. When the
// registry's allowance does not cover the stake, a large approval is mined
// first. On settlement the market, wager, balance and allowance cache
// entries are invalidated.
func (s *MutationService) PlaceBet(ctx context.Context, marketID uint64, side domain.Side, amount *big.Int) (string, error) {
	opKey := opBet(marketID)
	s.setPhase(opKey, domain.PhaseValidating)

	if !side.Valid() {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: invalid side %d: %w", side, domain.ErrValidation)
	}
	if amount == nil || amount.Sign() <= 0 {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: stake must be positive: %w", domain.ErrValidation)
	}
	if s.cfg.WalletAddress == "" {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: place bet: %w", domain.ErrNoWallet)
	}

	keys := []string{
		domain.MarketsKey(),
		domain.MarketKey(marketID),
		domain.WagerKey(marketID, s.cfg.WalletAddress),
		domain.BalanceKey(s.cfg.WalletAddress),
		domain.AllowanceKey(s.cfg.WalletAddress, s.cfg.RegistryAddress),
	}

	return s.submit(ctx, opKey, keys, func(ctx context.Context) (domain.Tx, error) {
		if err := s.ensureAllowance(ctx, opKey, amount); err != nil {
			return nil, err
		}
		s.setPhase(opKey, domain.PhaseSubmitting)
		return s.writer.PlaceBet(ctx, marketID, side, amount)
	})
}

// SubmitEvidence uploads the evidence blob and records its URI on the market.
// The blob is uploaded before the lock-guarded transaction; an upload that
// succeeds for a transaction that then fails leaves an orphaned blob, which
// is harmless.
func (s *MutationService) SubmitEvidence(ctx context.Context, marketID uint64, name string, data io.Reader, contentType string) (uri string, txHash string, err error) {
	opKey := opEvidence(marketID)
	s.setPhase(opKey, domain.PhaseValidating)

	if data == nil {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", "", fmt.Errorf("mutation: evidence payload is required: %w", domain.ErrValidation)
	}

	uri, err = s.evidence.Upload(ctx, name, data, contentType)
	if err != nil {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", "", fmt.Errorf("mutation: upload evidence: %w", err)
	}

	keys := []string{domain.MarketsKey(), domain.MarketKey(marketID)}
	txHash, err = s.submit(ctx, opKey, keys, func(ctx context.Context) (domain.Tx, error) {
		s.setPhase(opKey, domain.PhaseSubmitting)
		return s.writer.SubmitEvidence(ctx, marketID, uri)
	})
	if err != nil {
		return "", "", err
	}
	return uri, txHash, nil
}

// SubmitEvidenceURI records an already-hosted evidence URI on the market
// without going through the blob store.
func (s *MutationService) SubmitEvidenceURI(ctx context.Context, marketID uint64, uri string) (string, error) {
	opKey := opEvidence(marketID)
	s.setPhase(opKey, domain.PhaseValidating)

	if strings.TrimSpace(uri) == "" {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: evidence uri is required: %w", domain.ErrValidation)
	}

	keys := []string{domain.MarketsKey(), domain.MarketKey(marketID)}
	return s.submit(ctx, opKey, keys, func(ctx context.Context) (domain.Tx, error) {
		s.setPhase(opKey, domain.PhaseSubmitting)
		return s.writer.SubmitEvidence(ctx, marketID, uri)
	})
}

// ApproveAllowance grants the registry the configured maximum allowance
// up front so later bets skip the approval leg. On settlement the allowance
// cache entry is invalidated.
func (s *MutationService) ApproveAllowance(ctx context.Context) (string, error) {
	opKey := opApprove()
	s.setPhase(opKey, domain.PhaseValidating)

	if s.cfg.WalletAddress == "" {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: approve allowance: %w", domain.ErrNoWallet)
	}

	keys := []string{domain.AllowanceKey(s.cfg.WalletAddress, s.cfg.RegistryAddress)}
	return s.submit(ctx, opKey, keys, func(ctx context.Context) (domain.Tx, error) {
		s.setPhase(opKey, domain.PhaseApproving)
		return s.token.Approve(ctx, s.cfg.RegistryAddress, s.cfg.MaxAllowance)
	})
}

// ResolveMarket settles a market with a terminal outcome. Only allow-listed
// admin addresses may resolve. On settlement the market cache entries are
// invalidated.
func (s *MutationService) ResolveMarket(ctx context.Context, marketID uint64, outcome domain.Outcome, caller string) (string, error) {
	opKey := opResolve(marketID)
	s.setPhase(opKey, domain.PhaseValidating)

	if !s.gate.Allowed(caller) {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: %s may not resolve markets: %w", caller, domain.ErrUnauthorized)
	}
	if _, ok := outcome.Code(); !ok {
		s.setPhase(opKey, domain.PhaseIdle)
		return "", fmt.Errorf("mutation: outcome %q is not terminal: %w", outcome, domain.ErrValidation)
	}

	keys := []string{domain.MarketsKey(), domain.MarketKey(marketID)}
	return s.submit(ctx, opKey, keys, func(ctx context.Context) (domain.Tx, error) {
		s.setPhase(opKey, domain.PhaseSubmitting)
		return s.writer.ResolveMarket(ctx, marketID, outcome)
	})
}

// ensureAllowance checks the registry's allowance and, when it is below
// amount, mines a large approval so subsequent bets skip this step.
func (s *MutationService) ensureAllowance(ctx context.Context, opKey string, amount *big.Int) error {
	allowance, err := s.token.Allowance(ctx, s.cfg.WalletAddress, s.cfg.RegistryAddress)
	if err != nil {
		return fmt.Errorf("mutation: read allowance: %w", err)
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	s.setPhase(opKey, domain.PhaseApproving)
	s.logger.Info("allowance short, approving",
		"allowance", allowance.String(), "needed", amount.String())

	tx, err := s.token.Approve(ctx, s.cfg.RegistryAddress, s.cfg.MaxAllowance)
	if err != nil {
		return fmt.Errorf("mutation: approve: %w", err)
	}
	if err := tx.Wait(ctx); err != nil {
		return fmt.Errorf("mutation: approval not mined: %w", err)
	}
	return nil
}

// submit runs the guarded portion of a mutation: take the operation lock,
// execute fn, await finality, then invalidate keys and publish the
// invalidation event. fn owns the Approving/Submitting transitions so the
// observed phase order never runs backwards; the phase is reset to idle on
// any failure.
func (s *MutationService) submit(ctx context.Context, opKey string, keys []string, fn func(ctx context.Context) (domain.Tx, error)) (txHash string, err error) {
	release, err := s.locker.Acquire(ctx, opKey, s.cfg.LockTTL)
	if err != nil {
		s.setPhase(opKey, domain.PhaseIdle)
		if errors.Is(err, domain.ErrLockHeld) {
			return "", fmt.Errorf("mutation: %s: %w", opKey, domain.ErrMutationInFlight)
		}
		return "", fmt.Errorf("mutation: guard %s: %w", opKey, err)
	}
	defer release()

	defer func() {
		if err != nil {
			s.setPhase(opKey, domain.PhaseIdle)
		}
	}()

	tx, err := fn(ctx)
	if err != nil {
		return "", err
	}

	s.setPhase(opKey, domain.PhaseAwaitingFinality)
	if err := tx.Wait(ctx); err != nil {
		return "", err
	}

	s.setPhase(opKey, domain.PhaseSettled)
	s.settle(ctx, opKey, keys, tx.Hash())
	return tx.Hash(), nil
}

// settle removes the mutation's cache keys and announces them. Failures here
// are logged, not returned; the chain state already changed and the cache
// entries expire on their own TTL.
func (s *MutationService) settle(ctx context.Context, opKey string, keys []string, txHash string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", "op", opKey, "error", err)
	}

	payload, err := json.Marshal(domain.InvalidationEvent{Keys: keys, Tx: txHash})
	if err != nil {
		s.logger.Warn("invalidation event marshal failed", "op", opKey, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, domain.InvalidationChannel, payload); err != nil {
		s.logger.Warn("invalidation publish failed", "op", opKey, "error", err)
	}

	s.logger.Info("mutation settled", "op", opKey, "tx_hash", txHash, "invalidated", len(keys))
}
