package domain

import (
	"math/big"
	"time"
)

// Status is the lifecycle state of a market. A market is created Open and
// transitions to Resolved exactly once; the transition is irreversible.
type Status string

const (
	StatusOpen     Status = "Open"
	StatusResolved Status = "Resolved"
)

// Outcome is the resolution result of a market. It stays Undecided for the
// whole Open lifetime and becomes Yes, No, or Void at resolution.
type Outcome string

const (
	OutcomeUndecided Outcome = "Undecided"
	OutcomeYes       Outcome = "Yes"
	OutcomeNo        Outcome = "No"
	OutcomeVoid      Outcome = "Void"
)

// Code returns the on-chain enum value for an outcome and whether the outcome
// is one a market can be resolved to (Undecided is not).
func (o Outcome) Code() (uint8, bool) {
	switch o {
	case OutcomeYes:
		return 1, true
	case OutcomeNo:
		return 2, true
	case OutcomeVoid:
		return 3, true
	default:
		return 0, false
	}
}

// Side is the side of a market a stake is placed on. Values match the
// contract's placeBet enum.
type Side uint8

const (
	SideYes Side = 1
	SideNo  Side = 2
)

// Valid reports whether the side is one of the two bettable sides.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Market is one yes/no proposition as read from the registry contract. Pool
// amounts are kept as big integers in the token's smallest unit; they must
// never pass through floating point.
type Market struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MetadataURI string    `json:"metadata_uri"`
	Deadline    time.Time `json:"deadline"`
	Status      Status    `json:"status"`
	Outcome     Outcome   `json:"outcome"`
	YesPool     *big.Int  `json:"yes_pool"`
	NoPool      *big.Int  `json:"no_pool"`
	BettorCount *big.Int  `json:"bettor_count"`
}

// Wager is one address's accumulated stake on a single market. A bettor may
// hold both sides at once. Paid flips to true once winnings were distributed.
type Wager struct {
	YesAmount *big.Int `json:"yes_amount"`
	NoAmount  *big.Int `json:"no_amount"`
	Paid      bool     `json:"paid"`
}

// MarketWithWager annotates a Market with the acting address's wager. A nil
// Wager means no annotation was fetched (no connected address, or the wager
// read did not complete); this is distinct from a fetched zero-value wager.
type MarketWithWager struct {
	Market
	Derived DerivedView `json:"derived"`
	Wager   *Wager      `json:"wager,omitempty"`
}

// DerivedView carries the time- and ratio-dependent fields computed from a
// Market at a given instant. It is recomputed on every read and never stored.
type DerivedView struct {
	YesPct    float64 `json:"yes_pct"`
	NoPct     float64 `json:"no_pct"`
	Countdown string  `json:"countdown"`
	Expired   bool    `json:"expired"`
	Active    bool    `json:"active"`
}
