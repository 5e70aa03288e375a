// Package eligibility decides whether the current wallet may mint in the
// resolved phase. Pure decision logic; the whitelist balance and challenge
// state are looked up by the caller.
package eligibility

import "launchpad/internal/domain/sale"

// Status is the gate's verdict.
type Status uint8

const (
	StatusNotConnected Status = iota
	StatusIneligible
	StatusRequiresChallenge
	StatusEligible
)

func (s Status) String() string {
	switch s {
	case StatusNotConnected:
		return "not_connected"
	case StatusIneligible:
		return "ineligible"
	case StatusRequiresChallenge:
		return "requires_challenge"
	case StatusEligible:
		return "eligible"
	}
	return "unknown"
}

// Input bundles everything one evaluation needs. Evaluation is idempotent and
// side-effect free.
type Input struct {
	Phase     sale.Phase
	Connected bool

	// Whitelist config presale-flagged on the sale, and the wallet's token
	// balance. A presale-flagged whitelist with zero balance is ineligible in
	// every phase.
	WhitelistPresale bool
	WhitelistBalance uint64

	ChallengeRequired  bool
	ChallengeSatisfied bool
}

// Result carries the verdict plus a display reason for ineligible sessions.
type Result struct {
	Status Status
	Reason string
}

// Evaluate runs the gate. Re-checked on every refresh; an ineligible verdict
// holds until its inputs change.
func Evaluate(in Input) Result {
	if !in.Connected {
		return Result{Status: StatusNotConnected, Reason: "wallet not connected"}
	}

	if in.WhitelistPresale && in.WhitelistBalance == 0 {
		return Result{Status: StatusIneligible, Reason: "whitelist-only, no allocation"}
	}

	switch in.Phase {
	case sale.PhaseSoldOut:
		return Result{Status: StatusIneligible, Reason: "sold out"}
	case sale.PhaseEnded:
		return Result{Status: StatusIneligible, Reason: "sale has ended"}
	case sale.PhaseNotStarted:
		return Result{Status: StatusIneligible, Reason: "sale has not started"}
	}

	if in.ChallengeRequired && !in.ChallengeSatisfied {
		return Result{Status: StatusRequiresChallenge, Reason: "verification required"}
	}

	return Result{Status: StatusEligible}
}
