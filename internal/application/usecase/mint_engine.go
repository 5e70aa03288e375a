package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"launchpad/internal/domain/mint"
)

// ============================================================
// Transaction submission & confirmation engine
// ============================================================

var (
	ErrEngineNotConfigured = errors.New("mint_engine: not configured")
	ErrEngineWalletEmpty   = errors.New("mint_engine: wallet is empty")
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultConfirmTimeout = 30 * time.Second
)

// AttemptObserver receives every status transition of the running attempt.
type AttemptObserver func(mint.Attempt)

// MintEngine drives exactly one attempt per Run call:
// Building -> Submitted -> {Confirmed | Failed | TimedOut}.
// Exclusion between attempts is the orchestrator's busy flag, not this type.
type MintEngine struct {
	wallets   WalletSigner
	submitter TransactionSubmitter
	status    TransactionStatusQuery

	pollInterval time.Duration
	timeout      time.Duration
	cluster      string // explorer-link cluster suffix ("devnet"/"testnet"/"")

	now func() time.Time
}

// NewMintEngine constructs the engine. Zero durations fall back to defaults.
func NewMintEngine(
	wallets WalletSigner,
	submitter TransactionSubmitter,
	status TransactionStatusQuery,
	pollInterval time.Duration,
	timeout time.Duration,
	cluster string,
) *MintEngine {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}
	return &MintEngine{
		wallets:      wallets,
		submitter:    submitter,
		status:       status,
		pollInterval: pollInterval,
		timeout:      timeout,
		cluster:      strings.TrimSpace(cluster),
		now:          time.Now,
	}
}

// Run does:
// 1) build + sign + submit the mint transaction (fail fast without a signer)
// 2) poll confirmation at a fixed interval up to the configured timeout
// 3) classify the terminal state
//
// The returned outcome is the single report of the terminal state. A context
// cancellation (session teardown) aborts polling promptly and returns ctx.Err()
// without producing an outcome; counters are never touched in that case.
func (e *MintEngine) Run(ctx context.Context, wallet string, observe AttemptObserver) (mint.Outcome, error) {
	if e == nil || e.wallets == nil || e.submitter == nil || e.status == nil {
		return mint.Outcome{}, ErrEngineNotConfigured
	}
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return mint.Outcome{}, ErrEngineWalletEmpty
	}

	attempt := mint.NewAttempt(e.now())
	emit := func() {
		if observe != nil {
			observe(attempt)
		}
	}
	emit() // Building

	terminal := func(st mint.Status, f *mint.Failure) mint.Outcome {
		attempt.Status = st
		attempt.Failure = f
		attempt.EndedAt = e.now()
		emit()
		out := mint.Outcome{
			AttemptID:   attempt.ID,
			Status:      st,
			TxSignature: attempt.TxSignature,
			AssetMint:   attempt.AssetMint,
			Failure:     f,
		}
		if st == mint.StatusConfirmed {
			out.ExplorerURL = mint.ExplorerURL(attempt.AssetMint, e.cluster)
		}
		return out
	}

	// 1) acquire signing capability; fail fast without one
	signer, err := e.wallets.Signer(ctx, wallet)
	if err != nil {
		if ctx.Err() != nil {
			return mint.Outcome{}, fmt.Errorf("mint_engine: signing aborted: %w", ctx.Err())
		}
		return terminal(mint.StatusFailed, mint.SignerDeclined(err.Error())), nil
	}
	if signer == nil {
		return terminal(mint.StatusFailed, mint.SignerDeclined("wallet signing capability unavailable")), nil
	}

	// 2) build + submit
	sub, err := e.submitter.SubmitMint(ctx, SubmitMintInput{Wallet: wallet, Signer: signer})
	if err != nil {
		if errors.Is(err, ErrSignerDeclined) {
			return terminal(mint.StatusFailed, mint.SignerDeclined(err.Error())), nil
		}
		if ctx.Err() != nil {
			return mint.Outcome{}, fmt.Errorf("mint_engine: submit aborted: %w", ctx.Err())
		}
		return terminal(mint.StatusFailed, mint.SubmissionRejected(err.Error())), nil
	}

	attempt.TxSignature = strings.TrimSpace(sub.TxSignature)
	attempt.AssetMint = strings.TrimSpace(sub.AssetMint)
	attempt.Status = mint.StatusSubmitted
	emit()

	log.Printf("[mint_engine] submitted attempt=%s tx=%s asset=%s",
		attempt.ID, maskShort(attempt.TxSignature), maskShort(attempt.AssetMint))

	// 3) poll confirmation
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()

	for {
		st, err := e.status.Status(ctx, attempt.TxSignature)
		if err != nil {
			if ctx.Err() != nil {
				return mint.Outcome{}, fmt.Errorf("mint_engine: polling aborted: %w", ctx.Err())
			}
			// connectivity hiccup: keep polling until the deadline
			log.Printf("[mint_engine] WARN status poll failed tx=%s: %v", maskShort(attempt.TxSignature), err)
		} else {
			switch st.State {
			case TxSettledOK:
				return terminal(mint.StatusConfirmed, nil), nil
			case TxSettledErr:
				return terminal(mint.StatusFailed, mint.ClassifyOnChainError(st.ErrCode)), nil
			}
		}

		select {
		case <-ctx.Done():
			return mint.Outcome{}, fmt.Errorf("mint_engine: polling aborted: %w", ctx.Err())
		case <-deadline.C:
			// not the same as Failed: the transaction may still land later
			return terminal(mint.StatusTimedOut, nil), nil
		case <-ticker.C:
		}
	}
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
