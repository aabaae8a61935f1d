package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// marketView mirrors the getMarket return tuple.
type marketView struct {
	Title       string
	Description string
	MetadataURI string
	Deadline    uint64
	Status      uint8
	Outcome     uint8
	YesPool     *big.Int
	NoPool      *big.Int
	BettorCount *big.Int
}

// wagerView mirrors the getWager return tuple.
type wagerView struct {
	YesAmount *big.Int
	NoAmount  *big.Int
	Paid      bool
}

// Registry talks to the on-chain market registry. Reads go through batched
// eth_call rounds; a market whose call fails or decodes badly is dropped from
// the result rather than failing the whole batch. Writes require a Signer.
type Registry struct {
	address  common.Address
	contract *bind.BoundContract
	client   *Client
	signer   *Signer
	logger   *slog.Logger
}

// NewRegistry binds the registry contract at the given address. signer may be
// nil for a read-only registry; write operations then fail with
// domain.ErrNoWallet.
func NewRegistry(client *Client, address string, signer *Signer, logger *slog.Logger) (*Registry, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("chain: invalid registry address %q", address)
	}
	addr := common.HexToAddress(address)

	return &Registry{
		address:  addr,
		contract: bind.NewBoundContract(addr, registryABI, client.Eth(), client.Eth(), client.Eth()),
		client:   client,
		signer:   signer,
		logger:   logger.With("component", "registry"),
	}, nil
}

// MarketCount returns the number of markets ever created. Market ids are
// dense, so ids 0..count-1 all exist.
func (r *Registry) MarketCount(ctx context.Context) (uint64, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "marketCount")
	if err != nil {
		return 0, fmt.Errorf("chain: market count: %w", err)
	}
	count := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	return count.Uint64(), nil
}

// Markets fetches the given market ids in a single batched RPC round. Ids
// whose individual call fails are logged and omitted from the result; the
// error return covers only transport-level failure of the whole round.
func (r *Registry) Markets(ctx context.Context, ids []uint64) (map[uint64]domain.Market, error) {
	if len(ids) == 0 {
		return map[uint64]domain.Market{}, nil
	}

	batch := make([]rpc.BatchElem, len(ids))
	results := make([]hexutil.Bytes, len(ids))
	for i, id := range ids {
		input, err := registryABI.Pack("getMarket", new(big.Int).SetUint64(id))
		if err != nil {
			return nil, fmt.Errorf("chain: pack getMarket(%d): %w", id, err)
		}
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{ethCallArgs(r.address, input), "latest"},
			Result: &results[i],
		}
	}

	if err := r.client.RPC().BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("chain: batched market read: %w", err)
	}

	markets := make(map[uint64]domain.Market, len(ids))
	for i, id := range ids {
		if batch[i].Error != nil {
			r.logger.Warn("dropping unreadable market", "market_id", id, "error", batch[i].Error)
			continue
		}
		view, err := unpackMarket(results[i])
		if err != nil {
			r.logger.Warn("dropping undecodable market", "market_id", id, "error", err)
			continue
		}
		markets[id] = toDomainMarket(id, view)
	}
	return markets, nil
}

// Wagers fetches the bettor's positions on the given market ids in one
// batched round. Markets where the bettor has no position come back as zero
// wagers and are included; only failed or undecodable entries are dropped.
func (r *Registry) Wagers(ctx context.Context, bettor string, ids []uint64) (map[uint64]domain.Wager, error) {
	if len(ids) == 0 {
		return map[uint64]domain.Wager{}, nil
	}
	if !common.IsHexAddress(bettor) {
		return nil, fmt.Errorf("chain: invalid bettor address %q: %w", bettor, domain.ErrValidation)
	}
	bettorAddr := common.HexToAddress(bettor)

	batch := make([]rpc.BatchElem, len(ids))
	results := make([]hexutil.Bytes, len(ids))
	for i, id := range ids {
		input, err := registryABI.Pack("getWager", new(big.Int).SetUint64(id), bettorAddr)
		if err != nil {
			return nil, fmt.Errorf("chain: pack getWager(%d): %w", id, err)
		}
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{ethCallArgs(r.address, input), "latest"},
			Result: &results[i],
		}
	}

	if err := r.client.RPC().BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("chain: batched wager read: %w", err)
	}

	wagers := make(map[uint64]domain.Wager, len(ids))
	for i, id := range ids {
		if batch[i].Error != nil {
			r.logger.Warn("dropping unreadable wager", "market_id", id, "error", batch[i].Error)
			continue
		}
		view, err := unpackWager(results[i])
		if err != nil {
			r.logger.Warn("dropping undecodable wager", "market_id", id, "error", err)
			continue
		}
		wagers[id] = domain.Wager{
			YesAmount: view.YesAmount,
			NoAmount:  view.NoAmount,
			Paid:      view.Paid,
		}
	}
	return wagers, nil
}

// CreateMarket submits a market creation transaction.
func (r *Registry) CreateMarket(ctx context.Context, title, description string, deadline time.Time, metadataURI string) (domain.Tx, error) {
	return r.transact(ctx, "createMarket", title, description, uint64(deadline.Unix()), metadataURI)
}

// PlaceBet submits a bet of amount settlement-token base units on a side.
func (r *Registry) PlaceBet(ctx context.Context, marketID uint64, side domain.Side, amount *big.Int) (domain.Tx, error) {
	return r.transact(ctx, "placeBet", new(big.Int).SetUint64(marketID), uint8(side), amount)
}

// SubmitEvidence records an evidence blob URI against a market.
func (r *Registry) SubmitEvidence(ctx context.Context, marketID uint64, uri string) (domain.Tx, error) {
	return r.transact(ctx, "submitEvidence", new(big.Int).SetUint64(marketID), uri)
}

// ResolveMarket settles a market with a terminal outcome.
func (r *Registry) ResolveMarket(ctx context.Context, marketID uint64, outcome domain.Outcome) (domain.Tx, error) {
	code, ok := outcome.Code()
	if !ok {
		return nil, fmt.Errorf("chain: outcome %q is not terminal: %w", outcome, domain.ErrValidation)
	}
	return r.transact(ctx, "resolveMarket", new(big.Int).SetUint64(marketID), code)
}

func (r *Registry) transact(ctx context.Context, method string, args ...interface{}) (domain.Tx, error) {
	if r.signer == nil {
		return nil, fmt.Errorf("chain: %s: %w", method, domain.ErrNoWallet)
	}
	opts, err := r.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := r.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, fmt.Errorf("chain: %s: %w", method, err)
	}
	r.logger.Info("transaction submitted", "method", method, "tx_hash", tx.Hash().Hex())
	return &minedTx{inner: tx, backend: r.client.Eth()}, nil
}

func unpackMarket(data []byte) (*marketView, error) {
	out, err := registryABI.Unpack("getMarket", data)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(marketView)).(*marketView), nil
}

func unpackWager(data []byte) (*wagerView, error) {
	out, err := registryABI.Unpack("getWager", data)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(wagerView)).(*wagerView), nil
}

func toDomainMarket(id uint64, view *marketView) domain.Market {
	return domain.Market{
		ID:          id,
		Title:       view.Title,
		Description: view.Description,
		MetadataURI: view.MetadataURI,
		Deadline:    time.Unix(int64(view.Deadline), 0).UTC(),
		Status:      domain.DecodeStatus(view.Status),
		Outcome:     domain.DecodeOutcome(view.Outcome),
		YesPool:     view.YesPool,
		NoPool:      view.NoPool,
		BettorCount: view.BettorCount,
	}
}

// ethCallArgs builds the call object for a raw eth_call batch element.
func ethCallArgs(to common.Address, input []byte) map[string]interface{} {
	return map[string]interface{}{
		"to":   to,
		"data": hexutil.Bytes(input),
	}
}

var _ domain.RegistryReader = (*Registry)(nil)
var _ domain.RegistryWriter = (*Registry)(nil)
