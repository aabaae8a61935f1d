package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// Token is the ERC-20 settlement token used for stakes and payouts.
type Token struct {
	address  common.Address
	contract *bind.BoundContract
	client   *Client
	signer   *Signer
	logger   *slog.Logger
}

// NewToken binds the settlement token contract. signer may be nil for a
// read-only token; Approve then fails with domain.ErrNoWallet.
func NewToken(client *Client, address string, signer *Signer, logger *slog.Logger) (*Token, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("chain: invalid token address %q", address)
	}
	addr := common.HexToAddress(address)

	return &Token{
		address:  addr,
		contract: bind.NewBoundContract(addr, erc20ABI, client.Eth(), client.Eth(), client.Eth()),
		client:   client,
		signer:   signer,
		logger:   logger.With("component", "token"),
	}, nil
}

// BalanceOf returns the token balance of an account in base units.
func (t *Token) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("chain: invalid account address %q: %w", account, domain.ErrValidation)
	}
	var out []interface{}
	err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(account))
	if err != nil {
		return nil, fmt.Errorf("chain: balanceOf: %w", err)
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// Allowance returns how many base units spender may move on owner's behalf.
func (t *Token) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	if !common.IsHexAddress(owner) || !common.IsHexAddress(spender) {
		return nil, fmt.Errorf("chain: invalid allowance addresses: %w", domain.ErrValidation)
	}
	var out []interface{}
	err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "allowance",
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, fmt.Errorf("chain: allowance: %w", err)
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil
}

// Approve grants spender an allowance of amount base units.
func (t *Token) Approve(ctx context.Context, spender string, amount *big.Int) (domain.Tx, error) {
	if t.signer == nil {
		return nil, fmt.Errorf("chain: approve: %w", domain.ErrNoWallet)
	}
	if !common.IsHexAddress(spender) {
		return nil, fmt.Errorf("chain: invalid spender address %q: %w", spender, domain.ErrValidation)
	}
	opts, err := t.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := t.contract.Transact(opts, "approve", common.HexToAddress(spender), amount)
	if err != nil {
		return nil, fmt.Errorf("chain: approve: %w", err)
	}
	t.logger.Info("approval submitted", "spender", spender, "tx_hash", tx.Hash().Hex())
	return &minedTx{inner: tx, backend: t.client.Eth()}, nil
}

var _ domain.Token = (*Token)(nil)
