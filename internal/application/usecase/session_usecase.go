package usecase

/*
Responsibilities:
- Single source of truth for one wallet's mint session: the sale snapshot,
  the locally tracked counters, the busy flag, and the last attempt.
- Sequences snapshot refresh -> phase resolution -> eligibility -> mint engine
  -> optimistic ledger, and exposes the resulting view to the HTTP/WS layer.
- All state mutation goes through this type under one mutex; async callbacks
  never write fields directly.

Important:
- At most one attempt is in flight; the busy flag is held for the whole
  Building -> terminal lifecycle.
- A snapshot refresh must not clobber counters that an optimistic update wrote
  after the fetch began; the counters' Version sequence guards the overwrite.
*/

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"launchpad/internal/domain/eligibility"
	"launchpad/internal/domain/mint"
	"launchpad/internal/domain/sale"
)

var (
	ErrSessionNotConfigured = errors.New("session_uc: not configured")
	ErrMintInFlight         = errors.New("session_uc: mint already in flight")
	ErrNoSnapshot           = errors.New("session_uc: no sale snapshot loaded")
	ErrNotConnected         = errors.New("session_uc: wallet not connected")
	ErrIneligible           = errors.New("session_uc: not eligible to mint")
	ErrChallengeRequired    = errors.New("session_uc: challenge not satisfied")
)

// EventKind tags what a session event carries.
type EventKind string

const (
	EventAttempt EventKind = "attempt"
	EventView    EventKind = "view"
)

// Event is pushed to subscribers on attempt transitions and view changes.
type Event struct {
	Kind    EventKind     `json:"kind"`
	Attempt *mint.Attempt `json:"attempt,omitempty"`
	View    *SessionView  `json:"view,omitempty"`
}

// SessionView is the read model exposed to the presentation layer.
type SessionView struct {
	Wallet string `json:"wallet,omitempty"`

	Phase          string `json:"phase"`
	Price          string `json:"price"`
	PriceBaseUnits uint64 `json:"priceBaseUnits"`
	PaymentSymbol  string `json:"paymentSymbol"`

	SupplyCap      uint64 `json:"supplyCap"`
	ItemsRedeemed  uint64 `json:"itemsRedeemed"`
	ItemsRemaining uint64 `json:"itemsRemaining"`

	WalletBalance    string `json:"walletBalance"`
	WhitelistBalance uint64 `json:"whitelistBalance"`

	Eligibility       string `json:"eligibility"`
	EligibilityReason string `json:"eligibilityReason,omitempty"`

	Busy          bool   `json:"busy"`
	AttemptID     string `json:"attemptId,omitempty"`
	AttemptStatus string `json:"attemptStatus,omitempty"`
	ExplorerURL   string `json:"explorerUrl,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`

	GoLiveDate *time.Time `json:"goLiveDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`

	// ReconcileRecommended is set after Failed/TimedOut terminals until the
	// next successful refresh (authoritative counters live on-chain).
	ReconcileRecommended bool `json:"reconcileRecommended"`
}

// SessionUsecase owns one wallet session. See package comment above.
type SessionUsecase struct {
	snapshots SnapshotQuery
	balances  BalanceQuery
	challenge ChallengeProvider // optional
	engine    *MintEngine

	mu             sync.Mutex
	wallet         string
	cfg            *sale.SaleConfig
	ctr            sale.SaleCounters
	busy           bool
	attempt        mint.Attempt
	lastOutcome    *mint.Outcome
	challengeOK    bool
	needsReconcile bool

	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	subs map[chan Event]struct{}

	now func() time.Time
}

func NewSessionUsecase(
	snapshots SnapshotQuery,
	balances BalanceQuery,
	challenge ChallengeProvider,
	engine *MintEngine,
) *SessionUsecase {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionUsecase{
		snapshots:     snapshots,
		balances:      balances,
		challenge:     challenge,
		engine:        engine,
		sessionCtx:    ctx,
		sessionCancel: cancel,
		subs:          make(map[chan Event]struct{}),
		now:           time.Now,
	}
}

// SetWallet connects (or, with an empty address, disconnects) the session
// wallet. Disconnecting cancels any in-flight confirmation polling; connecting
// resets the per-wallet counters and leaves the caller to Refresh.
func (u *SessionUsecase) SetWallet(addr string) {
	if u == nil {
		return
	}
	addr = strings.TrimSpace(addr)

	u.mu.Lock()
	if addr == u.wallet {
		u.mu.Unlock()
		return
	}
	// teardown of the previous wallet session stops its polling
	u.sessionCancel()
	u.sessionCtx, u.sessionCancel = context.WithCancel(context.Background())

	u.wallet = addr
	u.attempt = mint.Attempt{}
	u.lastOutcome = nil
	u.ctr.WalletLamports = 0
	u.ctr.WhitelistBalance = 0
	u.ctr.Version++
	u.mu.Unlock()

	log.Printf("[session_uc] wallet set to %s", maskShort(addr))
	u.publishView()
}

// Close tears the session down and stops any in-flight polling.
func (u *SessionUsecase) Close() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.sessionCancel()
	for ch := range u.subs {
		close(ch)
		delete(u.subs, ch)
	}
	u.mu.Unlock()
}

// ============================================================
// Refresh
// ============================================================

// Refresh does:
// 1) note the counters version, then fetch snapshot + balances (read-only,
//    may run while a mint is in flight)
// 2) swap in the new immutable SaleConfig
// 3) seed counters from the snapshot unless an optimistic write landed since
//    the fetch began (version check)
// Transient failures keep the previous state; the next refresh retries.
func (u *SessionUsecase) Refresh(ctx context.Context) error {
	if u == nil || u.snapshots == nil || u.balances == nil {
		return ErrSessionNotConfigured
	}

	u.mu.Lock()
	wallet := u.wallet
	v0 := u.ctr.Version
	u.mu.Unlock()

	cfg, seed, err := u.snapshots.FetchSaleState(ctx)
	if err != nil {
		log.Printf("[session_uc] WARN snapshot refresh failed: %v", err)
		return fmt.Errorf("session_uc: snapshot refresh: %w", err)
	}

	var lamports, wlBalance uint64
	if wallet != "" {
		// balance reads degrade to 0; the adapter logs the warning
		lamports, _ = u.balances.NativeBalance(ctx, wallet)
		if cfg.Whitelist != nil {
			wlBalance, _ = u.balances.TokenBalance(ctx, wallet, cfg.Whitelist.TokenMint)
		}
	}

	challengeOK := true
	if cfg.Gatekeeper != nil {
		challengeOK = false
		if u.challenge != nil && wallet != "" {
			ok, cerr := u.challenge.Satisfied(ctx, wallet)
			if cerr != nil {
				log.Printf("[session_uc] WARN challenge lookup failed: %v", cerr)
			} else {
				challengeOK = ok
			}
		}
	}

	u.mu.Lock()
	u.cfg = &cfg
	if u.ctr.Version == v0 {
		u.ctr = sale.Seed(cfg, seed.ItemsRedeemed, lamports, wlBalance, v0+1)
	} else {
		// an optimistic update landed mid-fetch; the stale seed must not win
		log.Printf("[session_uc] snapshot kept off counters (version moved v%d -> v%d)", v0, u.ctr.Version)
	}
	u.challengeOK = challengeOK
	u.needsReconcile = false
	u.mu.Unlock()

	u.publishView()
	return nil
}

// ============================================================
// Mint
// ============================================================

// Mint runs one attempt end to end. It is a no-op (ErrMintInFlight) while an
// attempt is in flight. The busy flag is held from Building to terminal.
func (u *SessionUsecase) Mint(ctx context.Context) (mint.Outcome, error) {
	if u == nil || u.engine == nil {
		return mint.Outcome{}, ErrSessionNotConfigured
	}

	u.mu.Lock()
	if u.busy {
		u.mu.Unlock()
		return mint.Outcome{}, ErrMintInFlight
	}
	if u.cfg == nil {
		u.mu.Unlock()
		return mint.Outcome{}, ErrNoSnapshot
	}
	cfg := *u.cfg
	ctr := u.ctr
	wallet := u.wallet
	challengeOK := u.challengeOK
	sessionCtx := u.sessionCtx

	res := sale.Resolve(cfg, ctr, u.now(), ctr.WhitelistBalance > 0)
	gate := eligibility.Evaluate(eligibility.Input{
		Phase:              res.Phase,
		Connected:          wallet != "",
		WhitelistPresale:   cfg.Whitelist != nil && cfg.Whitelist.Presale,
		WhitelistBalance:   ctr.WhitelistBalance,
		ChallengeRequired:  cfg.Gatekeeper != nil,
		ChallengeSatisfied: challengeOK,
	})
	switch gate.Status {
	case eligibility.StatusNotConnected:
		u.mu.Unlock()
		return mint.Outcome{}, ErrNotConnected
	case eligibility.StatusIneligible:
		u.mu.Unlock()
		return mint.Outcome{}, fmt.Errorf("%w: %s", ErrIneligible, gate.Reason)
	case eligibility.StatusRequiresChallenge:
		u.mu.Unlock()
		return mint.Outcome{}, ErrChallengeRequired
	}

	u.busy = true
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.busy = false
		u.mu.Unlock()
	}()

	// session teardown (wallet disconnect, shutdown) aborts polling promptly
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sessionCtx, cancel)
	defer stop()

	observe := func(a mint.Attempt) {
		u.mu.Lock()
		u.attempt = a
		u.mu.Unlock()
		u.publish(Event{Kind: EventAttempt, Attempt: &a})
	}

	outcome, err := u.engine.Run(runCtx, wallet, observe)
	if err != nil {
		// cancellation/misuse: no terminal state was produced
		return mint.Outcome{}, err
	}

	u.mu.Lock()
	u.lastOutcome = &outcome
	if outcome.Status == mint.StatusConfirmed {
		u.ctr = sale.Apply(cfg, res, u.ctr, outcome)
	} else {
		// counters untouched; authoritative numbers live on-chain
		u.needsReconcile = true
	}
	u.mu.Unlock()

	u.publishView()
	return outcome, nil
}

// ============================================================
// View / events
// ============================================================

// View resolves the phase against the current time and snapshots everything
// the presentation layer renders. Cheap; call it on every countdown tick.
func (u *SessionUsecase) View() SessionView {
	if u == nil {
		return SessionView{}
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.viewLocked()
}

func (u *SessionUsecase) viewLocked() SessionView {
	v := SessionView{
		Wallet:               u.wallet,
		Busy:                 u.busy,
		ReconcileRecommended: u.needsReconcile,
	}
	if u.cfg == nil {
		v.Phase = sale.PhaseNotStarted.String()
		v.Eligibility = eligibility.StatusNotConnected.String()
		return v
	}
	cfg := *u.cfg
	res := sale.Resolve(cfg, u.ctr, u.now(), u.ctr.WhitelistBalance > 0)

	v.Phase = res.Phase.String()
	v.Price = sale.FormatPrice(res)
	v.PriceBaseUnits = res.UnitPrice
	v.PaymentSymbol = res.Payment.Symbol
	v.SupplyCap = res.SupplyCap
	v.ItemsRedeemed = u.ctr.ItemsRedeemed
	v.ItemsRemaining = u.ctr.ItemsRemaining
	v.WalletBalance = sale.FormatAmount(u.ctr.WalletLamports, sale.NativeDecimals)
	v.WhitelistBalance = u.ctr.WhitelistBalance
	v.GoLiveDate = res.GoLiveDate
	v.EndDate = res.EndDate

	gate := eligibility.Evaluate(eligibility.Input{
		Phase:              res.Phase,
		Connected:          u.wallet != "",
		WhitelistPresale:   cfg.Whitelist != nil && cfg.Whitelist.Presale,
		WhitelistBalance:   u.ctr.WhitelistBalance,
		ChallengeRequired:  cfg.Gatekeeper != nil,
		ChallengeSatisfied: u.challengeOK,
	})
	v.Eligibility = gate.Status.String()
	v.EligibilityReason = gate.Reason

	if u.attempt.ID != "" {
		v.AttemptID = u.attempt.ID
		v.AttemptStatus = u.attempt.Status.String()
		if u.attempt.Failure != nil {
			v.FailureReason = u.attempt.Failure.Message
		}
	}
	if u.lastOutcome != nil {
		v.ExplorerURL = u.lastOutcome.ExplorerURL
	}
	return v
}

// Subscribe returns a buffered event channel. Slow consumers lose events
// rather than blocking the session.
func (u *SessionUsecase) Subscribe() chan Event {
	ch := make(chan Event, 16)
	u.mu.Lock()
	u.subs[ch] = struct{}{}
	u.mu.Unlock()
	return ch
}

func (u *SessionUsecase) Unsubscribe(ch chan Event) {
	u.mu.Lock()
	if _, ok := u.subs[ch]; ok {
		delete(u.subs, ch)
		close(ch)
	}
	u.mu.Unlock()
}

func (u *SessionUsecase) publish(ev Event) {
	u.mu.Lock()
	for ch := range u.subs {
		select {
		case ch <- ev:
		default: // drop for slow consumers
		}
	}
	u.mu.Unlock()
}

func (u *SessionUsecase) publishView() {
	u.mu.Lock()
	v := u.viewLocked()
	ev := Event{Kind: EventView, View: &v}
	// sends stay under the mutex: Unsubscribe closes channels under the same
	// lock, and a send on a closed channel panics even with a default case
	for ch := range u.subs {
		select {
		case ch <- ev:
		default: // drop for slow consumers
		}
	}
	u.mu.Unlock()
}

// ReconcileRecommended reports whether a terminal Failed/TimedOut is waiting
// for an authoritative refresh.
func (u *SessionUsecase) ReconcileRecommended() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.needsReconcile
}
