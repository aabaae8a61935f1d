package domain

// MutationPhase tracks where a write operation currently is in its
// lifecycle. Exactly one mutation per operation key may be past PhaseIdle at
// any time.
type MutationPhase string

const (
	PhaseIdle             MutationPhase = "idle"
	PhaseValidating       MutationPhase = "validating"
	PhaseApproving        MutationPhase = "approving"
	PhaseSubmitting       MutationPhase = "submitting"
	PhaseAwaitingFinality MutationPhase = "awaiting_finality"
	PhaseSettled          MutationPhase = "settled"
)

// InvalidationEvent is the payload published on InvalidationChannel after a
// mutation settles. Keys lists exactly the cache keys the mutation removed.
type InvalidationEvent struct {
	Keys []string `json:"keys"`
	Tx   string   `json:"tx,omitempty"`
}
