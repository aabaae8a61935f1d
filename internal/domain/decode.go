package domain

// DecodeStatus maps the contract's status enum to a Status. Unknown values
// decode to StatusOpen: the enum is an external contract that may grow, and an
// unrecognised value must not take down the read path.
func DecodeStatus(raw uint8) Status {
	switch raw {
	case 0:
		return StatusOpen
	case 1:
		return StatusResolved
	default:
		return StatusOpen
	}
}

// DecodeOutcome maps the contract's outcome enum to an Outcome. Unknown values
// decode to OutcomeUndecided.
func DecodeOutcome(raw uint8) Outcome {
	switch raw {
	case 0:
		return OutcomeUndecided
	case 1:
		return OutcomeYes
	case 2:
		return OutcomeNo
	case 3:
		return OutcomeVoid
	default:
		return OutcomeUndecided
	}
}
