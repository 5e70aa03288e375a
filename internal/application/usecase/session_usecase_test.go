package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/domain/mint"
	"launchpad/internal/domain/sale"
)

type fakeSnapshots struct {
	mu      sync.Mutex
	cfg     sale.SaleConfig
	seed    SnapshotSeed
	err     error
	onFetch func() // runs mid-fetch, before the result is returned
}

func (f *fakeSnapshots) FetchSaleState(_ context.Context) (sale.SaleConfig, SnapshotSeed, error) {
	f.mu.Lock()
	cfg, seed, err := f.cfg, f.seed, f.err
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return cfg, seed, err
}

type fakeBalances struct {
	lamports uint64
	token    uint64
}

func (f *fakeBalances) NativeBalance(_ context.Context, _ string) (uint64, error) {
	return f.lamports, nil
}

func (f *fakeBalances) TokenBalance(_ context.Context, _ string, _ string) (uint64, error) {
	return f.token, nil
}

func publicSaleConfig() sale.SaleConfig {
	return sale.SaleConfig{
		StateAddress:   "State111",
		Treasury:       "Treasury111",
		ItemsAvailable: 100,
		Price:          1_500_000_000,
		Payment:        sale.NativePayment(),
	}
}

func newTestSession(t *testing.T, cfg sale.SaleConfig, seed SnapshotSeed, sub *fakeSubmitter, st *fakeStatus) *SessionUsecase {
	t.Helper()
	snaps := &fakeSnapshots{cfg: cfg, seed: seed}
	engine := newTestEngine(&fakeSigner{}, sub, st, time.Second)
	u := NewSessionUsecase(snaps, &fakeBalances{lamports: 10_000_000_000}, nil, engine)
	t.Cleanup(u.Close)

	u.SetWallet(testWallet)
	require.NoError(t, u.Refresh(context.Background()))
	return u
}

func TestSessionMintConfirmedAppliesOptimistically(t *testing.T) {
	sub := &fakeSubmitter{}
	st := &fakeStatus{results: []TxStatus{{State: TxSettledOK}}}
	u := newTestSession(t, publicSaleConfig(), SnapshotSeed{ItemsRedeemed: 40}, sub, st)

	before := u.View()
	assert.Equal(t, uint64(60), before.ItemsRemaining)

	out, err := u.Mint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mint.StatusConfirmed, out.Status)

	after := u.View()
	assert.Equal(t, uint64(59), after.ItemsRemaining)
	assert.Equal(t, uint64(41), after.ItemsRedeemed)
	assert.False(t, after.Busy)
	assert.False(t, after.ReconcileRecommended)
	assert.NotEmpty(t, after.ExplorerURL)
}

func TestSessionMintBusyFlagIsExclusive(t *testing.T) {
	release := make(chan struct{})
	sub := &fakeSubmitter{block: release}
	st := &fakeStatus{results: []TxStatus{{State: TxSettledOK}}}
	u := newTestSession(t, publicSaleConfig(), SnapshotSeed{}, sub, st)

	done := make(chan struct{})
	go func() {
		_, _ = u.Mint(context.Background())
		close(done)
	}()

	// wait until the first attempt holds the busy flag
	deadline := time.Now().Add(time.Second)
	for !u.View().Busy {
		if time.Now().After(deadline) {
			t.Fatal("first attempt never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := u.Mint(context.Background())
	assert.ErrorIs(t, err, ErrMintInFlight)

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first attempt did not finish")
	}

	assert.Equal(t, 1, sub.callCount(), "a second in-flight attempt must not exist")
}

func TestSessionMintSoldOutIsIneligibleNoOp(t *testing.T) {
	cfg := publicSaleConfig()
	cfg.ItemsAvailable = 5555
	cfg.End = &sale.EndSettings{Kind: sale.EndByAmount, Amount: 5555}
	sub := &fakeSubmitter{}
	u := newTestSession(t, cfg, SnapshotSeed{ItemsRedeemed: 5555}, sub, &fakeStatus{})

	assert.Equal(t, sale.PhaseSoldOut.String(), u.View().Phase)

	_, err := u.Mint(context.Background())
	assert.ErrorIs(t, err, ErrIneligible)
	assert.Zero(t, sub.callCount())
}

func TestSessionMintFailedLeavesCountersAndFlagsReconcile(t *testing.T) {
	sub := &fakeSubmitter{}
	st := &fakeStatus{results: []TxStatus{{State: TxSettledErr, ErrCode: 0x135}}}
	u := newTestSession(t, publicSaleConfig(), SnapshotSeed{ItemsRedeemed: 40}, sub, st)

	out, err := u.Mint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mint.StatusFailed, out.Status)
	assert.Equal(t, mint.CategoryInsufficientFunds, out.Failure.Category)

	v := u.View()
	assert.Equal(t, uint64(40), v.ItemsRedeemed, "failed attempts never move counters")
	assert.Equal(t, uint64(60), v.ItemsRemaining)
	assert.True(t, v.ReconcileRecommended)

	require.NoError(t, u.Refresh(context.Background()))
	assert.False(t, u.View().ReconcileRecommended)
}

func TestSessionMintTimedOutLeavesCounters(t *testing.T) {
	sub := &fakeSubmitter{}
	st := &fakeStatus{} // forever pending
	snaps := &fakeSnapshots{cfg: publicSaleConfig(), seed: SnapshotSeed{ItemsRedeemed: 40}}
	engine := newTestEngine(&fakeSigner{}, sub, st, 30*time.Millisecond)
	u := NewSessionUsecase(snaps, &fakeBalances{lamports: 10_000_000_000}, nil, engine)
	t.Cleanup(u.Close)
	u.SetWallet(testWallet)
	require.NoError(t, u.Refresh(context.Background()))

	out, err := u.Mint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mint.StatusTimedOut, out.Status)

	v := u.View()
	assert.Equal(t, uint64(40), v.ItemsRedeemed)
	assert.True(t, v.ReconcileRecommended, "a timed-out attempt recommends a reconciling refresh")
}

func TestSessionRefreshDoesNotClobberOptimisticWrite(t *testing.T) {
	sub := &fakeSubmitter{}
	st := &fakeStatus{results: []TxStatus{{State: TxSettledOK}}}
	u := newTestSession(t, publicSaleConfig(), SnapshotSeed{ItemsRedeemed: 40}, sub, st)

	snaps := u.snapshots.(*fakeSnapshots)

	// a confirmed mint lands while the second refresh's fetch is in flight;
	// the stale seed (redeemed=40) must not overwrite the optimistic counters
	var once sync.Once
	snaps.mu.Lock()
	snaps.onFetch = func() {
		once.Do(func() {
			_, err := u.Mint(context.Background())
			require.NoError(t, err)
		})
	}
	snaps.mu.Unlock()

	require.NoError(t, u.Refresh(context.Background()))

	v := u.View()
	assert.Equal(t, uint64(41), v.ItemsRedeemed, "optimistic write must win over the stale seed")
	assert.Equal(t, uint64(59), v.ItemsRemaining)
}

func TestSessionMintWithoutWallet(t *testing.T) {
	snaps := &fakeSnapshots{cfg: publicSaleConfig()}
	engine := newTestEngine(&fakeSigner{}, &fakeSubmitter{}, &fakeStatus{}, time.Second)
	u := NewSessionUsecase(snaps, &fakeBalances{}, nil, engine)
	t.Cleanup(u.Close)
	require.NoError(t, u.Refresh(context.Background()))

	_, err := u.Mint(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSessionPublishSurvivesSubscriberChurn(t *testing.T) {
	u := newTestSession(t, publicSaleConfig(), SnapshotSeed{}, &fakeSubmitter{}, &fakeStatus{})

	// subscribers joining and leaving while views are being published must
	// never race a close against a pending send
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ch := u.Subscribe()
				u.Unsubscribe(ch)
			}
		}()
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		u.SetWallet("")
		u.SetWallet(testWallet)
	}
	close(stop)
	wg.Wait()
}

func TestSessionSubscribeSeesAttemptTransitions(t *testing.T) {
	sub := &fakeSubmitter{}
	st := &fakeStatus{results: []TxStatus{{State: TxSettledOK}}}
	u := newTestSession(t, publicSaleConfig(), SnapshotSeed{}, sub, st)

	ch := u.Subscribe()
	defer u.Unsubscribe(ch)

	_, err := u.Mint(context.Background())
	require.NoError(t, err)

	var statuses []string
	deadline := time.After(time.Second)
collect:
	for {
		select {
		case ev := <-ch:
			if ev.Kind == EventAttempt && ev.Attempt != nil {
				statuses = append(statuses, ev.Attempt.Status.String())
				if ev.Attempt.Status.Terminal() {
					break collect
				}
			}
		case <-deadline:
			t.Fatal("terminal attempt event never arrived")
		}
	}
	assert.Equal(t, []string{"building", "submitted", "confirmed"}, statuses)
}
