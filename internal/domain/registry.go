package domain

import (
	"context"
	"math/big"
	"time"
)

// Tx is a handle to a submitted ledger write. Wait blocks until the ledger
// confirms the transaction (finality) and returns an error if it reverted.
// A submitted transaction cannot be unsent; Wait is interrupted only by
// context teardown, never by a user-level cancel.
type Tx interface {
	Hash() string
	Wait(ctx context.Context) error
}

// RegistryReader is the read side of the market registry contract. Batch
// reads issue one network round per call; entries that fail individually are
// simply absent from the returned map.
type RegistryReader interface {
	// MarketCount returns the total number of markets ever created.
	MarketCount(ctx context.Context) (uint64, error)

	// Markets reads the given market ids in a single batched round. Ids whose
	// read or decode failed are missing from the result.
	Markets(ctx context.Context, ids []uint64) (map[uint64]Market, error)

	// Wagers reads the bettor's wager on each given market in a single
	// batched round. Ids whose read failed are missing from the result,
	// indistinguishable from markets the bettor never touched.
	Wagers(ctx context.Context, bettor string, ids []uint64) (map[uint64]Wager, error)
}

// RegistryWriter is the write side of the market registry contract. Every
// method submits exactly one transaction and returns its handle; callers
// decide when to await finality. Authorization for CreateMarket and
// ResolveMarket is enforced by the contract itself.
type RegistryWriter interface {
	CreateMarket(ctx context.Context, title, description string, deadline time.Time, metadataURI string) (Tx, error)
	PlaceBet(ctx context.Context, marketID uint64, side Side, amount *big.Int) (Tx, error)
	SubmitEvidence(ctx context.Context, marketID uint64, uri string) (Tx, error)
	ResolveMarket(ctx context.Context, marketID uint64, outcome Outcome) (Tx, error)
}

// Token is the settlement token contract (ERC-20 subset the flows need).
type Token interface {
	BalanceOf(ctx context.Context, address string) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender string) (*big.Int, error)
	Approve(ctx context.Context, spender string, amount *big.Int) (Tx, error)
}
