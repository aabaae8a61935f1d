package domain

import (
	"fmt"
	"math/big"
	"time"
)

// PoolRatio returns the yes/no pool split as percentages summing to 100.
// The division is done in integer arithmetic (basis points on big.Int) before
// the final float conversion so large pools do not lose precision. An empty
// market reads as an even 50/50 split.
func PoolRatio(yesPool, noPool *big.Int) (yesPct, noPct float64) {
	yes := bigOrZero(yesPool)
	no := bigOrZero(noPool)

	total := new(big.Int).Add(yes, no)
	if total.Sign() == 0 {
		return 50, 50
	}

	bps := new(big.Int).Mul(yes, big.NewInt(10000))
	bps.Quo(bps, total)

	yesPct = float64(bps.Int64()) / 100
	return yesPct, 100 - yesPct
}

// Countdown formats the time remaining until deadline as seen at now, and
// reports whether the deadline has passed. Display shows the two most
// significant non-zero units ("3d 7h", "2h 15m", "4m 9s", "42s"); once the
// deadline is reached it is the literal "Expired".
func Countdown(deadline, now time.Time) (display string, expired bool) {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return "Expired", true
	}

	totalSeconds := int64(remaining / time.Second)
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours), false
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes), false
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds), false
	default:
		return fmt.Sprintf("%ds", seconds), false
	}
}

// IsActive reports whether a market still accepts stakes at now: it must be
// Open and its deadline must not have passed. An Open market past its deadline
// counts as inactive even while its outcome is still Undecided.
func IsActive(m Market, now time.Time) bool {
	return m.Status == StatusOpen && m.Deadline.After(now)
}

// Partition splits markets into active and settled at the given instant.
// The split is a pure filter over the input; it is re-derived on every call
// because expiry is time-dependent and must not go stale between refreshes.
func Partition(markets []Market, now time.Time) (active, settled []Market) {
	for _, m := range markets {
		if IsActive(m, now) {
			active = append(active, m)
		} else {
			settled = append(settled, m)
		}
	}
	return active, settled
}

// Derive computes the ephemeral view fields for a market at the given instant.
func Derive(m Market, now time.Time) DerivedView {
	yesPct, noPct := PoolRatio(m.YesPool, m.NoPool)
	display, expired := Countdown(m.Deadline, now)
	return DerivedView{
		YesPct:    yesPct,
		NoPct:     noPct,
		Countdown: display,
		Expired:   expired,
		Active:    m.Status == StatusOpen && !expired,
	}
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
