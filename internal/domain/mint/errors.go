package mint

import "fmt"

// FailureKind classifies where a terminal failure came from.
type FailureKind uint8

const (
	// FailureSignerDeclined: the wallet refused to sign or signing capability
	// was unavailable. Surfaced verbatim, never retried.
	FailureSignerDeclined FailureKind = iota
	// FailureSubmissionRejected: the request never made it past the network
	// entry point (malformed, rejected synchronously).
	FailureSubmissionRejected
	// FailureOnChain: the transaction settled with a program error code.
	FailureOnChain
)

func (k FailureKind) String() string {
	switch k {
	case FailureSignerDeclined:
		return "signer_declined"
	case FailureSubmissionRejected:
		return "submission_rejected"
	case FailureOnChain:
		return "on_chain_error"
	}
	return "unknown"
}

// Category is the user-facing bucket for an on-chain program error.
type Category uint8

const (
	CategoryNone Category = iota
	CategorySoldOut
	CategorySaleNotStarted
	CategoryInsufficientFunds
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return ""
	case CategorySoldOut:
		return "sold_out"
	case CategorySaleNotStarted:
		return "sale_not_started"
	case CategoryInsufficientFunds:
		return "insufficient_funds"
	}
	return "unknown"
}

// Failure carries the classified reason of a failed attempt.
type Failure struct {
	Kind     FailureKind
	Category Category // meaningful for FailureOnChain
	Code     int64    // raw program error code (FailureOnChain)
	Message  string
}

// onChainCategories maps the sale program's custom error codes to user-facing
// categories. Exact numeric matching only. Extending the taxonomy means adding
// a row here; the state machine never changes.
var onChainCategories = map[int64]Category{
	0x135: CategoryInsufficientFunds, // 309: not enough funds to pay the mint
	0x137: CategorySoldOut,           // 311: supply exhausted on-chain
	0x138: CategorySaleNotStarted,    // 312: go-live not reached
}

// ClassifyOnChainError builds an on-chain Failure from a settled error code.
// Unmapped codes fall through to Unknown(code).
func ClassifyOnChainError(code int64) *Failure {
	cat, ok := onChainCategories[code]
	if !ok {
		cat = CategoryUnknown
	}
	return &Failure{
		Kind:     FailureOnChain,
		Category: cat,
		Code:     code,
		Message:  messageFor(cat, code),
	}
}

func messageFor(cat Category, code int64) string {
	switch cat {
	case CategorySoldOut:
		return "sold out"
	case CategorySaleNotStarted:
		return "minting period has not started yet"
	case CategoryInsufficientFunds:
		return "insufficient funds to mint"
	}
	return fmt.Sprintf("mint failed with program error 0x%x", code)
}

// SignerDeclined builds the failure for a declined/unavailable signer.
func SignerDeclined(msg string) *Failure {
	if msg == "" {
		msg = "wallet declined to sign"
	}
	return &Failure{Kind: FailureSignerDeclined, Message: msg}
}

// SubmissionRejected builds the failure for a synchronous network rejection.
func SubmissionRejected(msg string) *Failure {
	if msg == "" {
		msg = "transaction was rejected before submission"
	}
	return &Failure{Kind: FailureSubmissionRejected, Message: msg}
}
