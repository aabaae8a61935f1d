package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/sainath5001/walrustruth/internal/domain"
)

// minedTx implements domain.Tx by polling the backend until the transaction
// is included in a block.
type minedTx struct {
	inner   *types.Transaction
	backend bind.DeployBackend
}

func (t *minedTx) Hash() string {
	return t.inner.Hash().Hex()
}

// Wait blocks until the transaction is mined and returns an error if it
// reverted. It is interrupted only by context teardown; the transaction
// itself cannot be withdrawn once submitted.
func (t *minedTx) Wait(ctx context.Context) error {
	receipt, err := bind.WaitMined(ctx, t.backend, t.inner)
	if err != nil {
		return fmt.Errorf("chain: await finality %s: %w", t.inner.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("chain: tx %s: %w", t.inner.Hash().Hex(), domain.ErrTxReverted)
	}
	return nil
}

var _ domain.Tx = (*minedTx)(nil)
