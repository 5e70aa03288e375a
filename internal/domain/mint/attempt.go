package mint

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle of one mint attempt.
// Idle -> Building -> Submitted -> {Confirmed | Failed | TimedOut}
type Status uint8

const (
	StatusIdle Status = iota
	StatusBuilding
	StatusSubmitted
	StatusConfirmed
	StatusFailed
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusBuilding:
		return "building"
	case StatusSubmitted:
		return "submitted"
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	case StatusTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Terminal reports whether the attempt has reached a final state.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusTimedOut
}

// Attempt is the short-lived record of one mint cycle. At most one attempt is
// in flight per session; it is discarded once terminal.
type Attempt struct {
	ID string

	TxSignature string // empty until submission was accepted
	AssetMint   string // freshly generated single-use asset identity (base58)

	Status  Status
	Failure *Failure // set when Status == StatusFailed

	StartedAt time.Time
	EndedAt   time.Time // zero until terminal
}

// NewAttempt starts a new attempt in Building.
func NewAttempt(now time.Time) Attempt {
	return Attempt{
		ID:        uuid.NewString(),
		Status:    StatusBuilding,
		StartedAt: now,
	}
}

// Outcome is the terminal result handed to the orchestrator. Exactly one
// outcome is produced per attempt.
type Outcome struct {
	AttemptID   string
	Status      Status // Confirmed, Failed, or TimedOut
	TxSignature string
	AssetMint   string
	ExplorerURL string // set on Confirmed
	Failure     *Failure
}

// ExplorerURL builds the token page link for a confirmed mint.
// Off-mainnet clusters get the cluster query suffix.
func ExplorerURL(assetMint, cluster string) string {
	c := strings.TrimSpace(cluster)
	u := "https://solscan.io/token/" + strings.TrimSpace(assetMint)
	if c == "devnet" || c == "testnet" {
		u += "?cluster=" + c
	}
	return u
}
