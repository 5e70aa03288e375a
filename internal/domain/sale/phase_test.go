package sale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lamports = uint64(1_000_000_000)
)

func baseConfig() SaleConfig {
	return SaleConfig{
		StateAddress:   "StateAddr111111111111111111111111111111111",
		ItemsAvailable: 5555,
		Price:          1_500_000_000, // 1.5 SOL
		Payment:        NativePayment(),
	}
}

func TestResolvePublicSaleByDefault(t *testing.T) {
	cfg := baseConfig()
	ctr := Seed(cfg, 0, 10*lamports, 0, 1)

	res := Resolve(cfg, ctr, testNow, false)
	assert.Equal(t, PhasePublicSale, res.Phase)
	assert.Equal(t, cfg.Price, res.UnitPrice)
	assert.Equal(t, uint64(5555), res.SupplyCap)
}

func TestResolveNotStartedBeforeGoLive(t *testing.T) {
	cfg := baseConfig()
	goLive := testNow.Add(time.Hour)
	cfg.GoLiveDate = &goLive

	res := Resolve(cfg, Seed(cfg, 0, 0, 0, 1), testNow, false)
	assert.Equal(t, PhaseNotStarted, res.Phase)

	res = Resolve(cfg, Seed(cfg, 0, 0, 0, 1), goLive, false)
	assert.Equal(t, PhasePublicSale, res.Phase)
}

func TestResolveSoldOutByAmountThreshold(t *testing.T) {
	// sold out iff redeemed >= min(threshold, configured supply)
	cases := []struct {
		name      string
		supply    uint64
		threshold uint64
		redeemed  uint64
		soldOut   bool
	}{
		{"below both", 5555, 5555, 5554, false},
		{"at threshold", 5555, 5555, 5555, true},
		{"threshold under supply", 5555, 100, 100, true},
		{"threshold under supply, below", 5555, 100, 99, false},
		{"supply under threshold", 50, 100, 50, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			cfg.ItemsAvailable = tc.supply
			cfg.End = &EndSettings{Kind: EndByAmount, Amount: tc.threshold}
			res := Resolve(cfg, Seed(cfg, tc.redeemed, 0, 0, 1), testNow, false)
			if tc.soldOut {
				assert.Equal(t, PhaseSoldOut, res.Phase)
			} else {
				assert.NotEqual(t, PhaseSoldOut, res.Phase)
			}
		})
	}
}

func TestResolveEndedByDate(t *testing.T) {
	cfg := baseConfig()
	cfg.End = &EndSettings{Kind: EndByDate, Date: testNow.Add(-time.Minute)}

	res := Resolve(cfg, Seed(cfg, 10, 0, 0, 1), testNow, false)
	assert.Equal(t, PhaseEnded, res.Phase)
	require.NotNil(t, res.EndDate)

	// ended regardless of remaining inventory, even mid-presale
	res = Resolve(cfg, Seed(cfg, 10, 0, 5, 1), testNow, true)
	assert.Equal(t, PhaseEnded, res.Phase)
}

func TestResolveSoldOutBeatsEnded(t *testing.T) {
	cfg := baseConfig()
	cfg.ItemsAvailable = 10
	cfg.End = &EndSettings{Kind: EndByDate, Date: testNow.Add(-time.Minute)}

	res := Resolve(cfg, Seed(cfg, 10, 0, 0, 1), testNow, false)
	assert.Equal(t, PhaseSoldOut, res.Phase)
}

func TestResolvePresalePhases(t *testing.T) {
	cfg := baseConfig()
	goLive := testNow.Add(time.Hour)
	cfg.GoLiveDate = &goLive
	cfg.Whitelist = &WhitelistSettings{
		TokenMint: "WLToken1111111111111111111111111111111111",
		Presale:   true,
	}

	// whitelist-only: no discount price configured
	assert.True(t, cfg.WhitelistOnly())
	res := Resolve(cfg, Seed(cfg, 0, 0, 1, 1), testNow, true)
	assert.Equal(t, PhasePresaleWhitelistOnly, res.Phase)
	assert.Equal(t, cfg.Price, res.UnitPrice)

	// discounted presale uses the discount price
	discount := uint64(900_000_000)
	cfg.Whitelist.DiscountPrice = &discount
	assert.False(t, cfg.WhitelistOnly())
	res = Resolve(cfg, Seed(cfg, 0, 0, 1, 1), testNow, true)
	assert.Equal(t, PhasePresaleDiscounted, res.Phase)
	assert.Equal(t, discount, res.UnitPrice)

	// without the token the presale is unreachable
	res = Resolve(cfg, Seed(cfg, 0, 0, 0, 1), testNow, false)
	assert.Equal(t, PhaseNotStarted, res.Phase)
	assert.Equal(t, cfg.Price, res.UnitPrice)
}

func TestResolveScenarioFullSellThrough(t *testing.T) {
	// supply=5555, price=1.5 SOL, no whitelist, end-by-amount=5555, redeemed=5555
	cfg := baseConfig()
	cfg.End = &EndSettings{Kind: EndByAmount, Amount: 5555}
	ctr := Seed(cfg, 5555, 0, 0, 1)

	res := Resolve(cfg, ctr, testNow, false)
	assert.Equal(t, PhaseSoldOut, res.Phase)
	assert.Equal(t, uint64(0), ctr.ItemsRemaining)
}

func TestSeedDerivesRemaining(t *testing.T) {
	cfg := baseConfig()
	cfg.ItemsAvailable = 100

	assert.Equal(t, uint64(60), Seed(cfg, 40, 0, 0, 1).ItemsRemaining)
	// over-redemption floors at zero instead of wrapping
	assert.Equal(t, uint64(0), Seed(cfg, 150, 0, 0, 1).ItemsRemaining)
}
