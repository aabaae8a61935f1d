package domain

import (
	"fmt"
	"math/big"
)

// PreviewPayout computes the pari-mutuel payout a bettor would receive if they
// added stake to the given side right now and the market later resolved in
// their favour with the pools unchanged: the winning side's pool splits the
// total pool pro-rata, stake included.
//
// The result is an estimate, not a quote. The real payout depends on the pool
// composition at resolution time, so callers must recompute whenever the pools
// change and must never present the preview as binding.
func PreviewPayout(side Side, stake, yesPool, noPool *big.Int) (*big.Int, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("preview payout: %w: unknown side %d", ErrValidation, side)
	}
	if stake == nil || stake.Sign() <= 0 {
		return nil, fmt.Errorf("preview payout: %w: stake must be positive", ErrValidation)
	}

	sidePool := bigOrZero(yesPool)
	opposing := bigOrZero(noPool)
	if side == SideNo {
		sidePool, opposing = opposing, sidePool
	}

	newSidePool := new(big.Int).Add(sidePool, stake)
	if newSidePool.Sign() == 0 {
		return nil, fmt.Errorf("preview payout: %w: empty side pool", ErrValidation)
	}

	totalPool := new(big.Int).Add(newSidePool, opposing)

	payout := new(big.Int).Mul(stake, totalPool)
	payout.Quo(payout, newSidePool)
	return payout, nil
}
