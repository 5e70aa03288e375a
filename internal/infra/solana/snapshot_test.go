package solana

import (
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/domain/sale"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func testReader(sym string, dec uint8) *SnapshotReader {
	return &SnapshotReader{
		StateAddress: "State1111111111111111111111111111111111111",
		SPLPayment:   PaymentOverride{Symbol: sym, Decimals: dec},
		now:          fixedNow,
	}
}

func TestToConfigNativeMinimal(t *testing.T) {
	var authority, treasury [32]byte
	authority[0], treasury[0] = 1, 2

	st := saleStateAccount{
		Authority:      authority,
		Treasury:       treasury,
		Price:          2_000_000_000,
		ItemsAvailable: 5555,
		ItemsRedeemed:  40,
	}

	cfg := testReader("", 0).toConfig(st)

	assert.Equal(t, base58.Encode(authority[:]), cfg.Authority)
	assert.Equal(t, base58.Encode(treasury[:]), cfg.Treasury)
	assert.Equal(t, uint64(5555), cfg.ItemsAvailable)
	assert.Equal(t, uint64(2_000_000_000), cfg.Price)
	assert.True(t, cfg.Payment.Native())
	assert.Equal(t, uint8(9), cfg.Payment.Decimals)
	assert.Nil(t, cfg.GoLiveDate)
	assert.Nil(t, cfg.End)
	assert.Nil(t, cfg.Whitelist)
	assert.Nil(t, cfg.Gatekeeper)
	assert.Equal(t, fixedNow(), cfg.FetchedAt)
}

func TestToConfigFullStateBorshRoundTrip(t *testing.T) {
	var paymentMint, wlMint, network [32]byte
	paymentMint[0], wlMint[0], network[0] = 3, 4, 5

	goLive := int64(1_700_000_000)
	discount := uint64(1_000_000)

	in := saleStateAccount{
		Price:          2_500_000,
		ItemsAvailable: 5555,
		ItemsRedeemed:  123,
		TokenMint:      &paymentMint,
		GoLiveDate:     &goLive,
		EndSettings:    &endSettingsLayout{Kind: 1, Number: 5000},
		Whitelist: &whitelistLayout{
			Mode:          0, // burn every time
			Mint:          wlMint,
			Presale:       true,
			DiscountPrice: &discount,
		},
		Gatekeeper: &gatekeeperLayout{Network: network, ExpireOnUse: true},
	}

	// through the wire format, the way FetchSaleState sees it
	raw, err := borsh.Serialize(in)
	require.NoError(t, err)
	var out saleStateAccount
	require.NoError(t, borsh.Deserialize(&out, raw))

	cfg := testReader("USDC", 6).toConfig(out)

	assert.Equal(t, base58.Encode(paymentMint[:]), cfg.Payment.TokenMint)
	assert.Equal(t, "USDC", cfg.Payment.Symbol)
	assert.Equal(t, uint8(6), cfg.Payment.Decimals)
	assert.False(t, cfg.Payment.Native())

	require.NotNil(t, cfg.GoLiveDate)
	assert.Equal(t, time.Unix(goLive, 0).UTC(), *cfg.GoLiveDate)

	require.NotNil(t, cfg.End)
	assert.Equal(t, sale.EndByAmount, cfg.End.Kind)
	assert.Equal(t, uint64(5000), cfg.End.Amount)
	assert.Equal(t, uint64(5000), cfg.EffectiveSupplyCap())

	require.NotNil(t, cfg.Whitelist)
	assert.Equal(t, base58.Encode(wlMint[:]), cfg.Whitelist.TokenMint)
	assert.True(t, cfg.Whitelist.Presale)
	assert.True(t, cfg.Whitelist.BurnEveryTime)
	require.NotNil(t, cfg.Whitelist.DiscountPrice)
	assert.Equal(t, discount, *cfg.Whitelist.DiscountPrice)

	require.NotNil(t, cfg.Gatekeeper)
	assert.True(t, cfg.Gatekeeper.ExpireOnUse)
}

func TestToConfigEndByDate(t *testing.T) {
	endUnix := uint64(1_700_100_000)
	st := saleStateAccount{
		ItemsAvailable: 100,
		EndSettings:    &endSettingsLayout{Kind: 0, Number: endUnix},
	}

	cfg := testReader("", 0).toConfig(st)

	require.NotNil(t, cfg.End)
	assert.Equal(t, sale.EndByDate, cfg.End.Kind)
	assert.Equal(t, time.Unix(int64(endUnix), 0).UTC(), cfg.End.Date)
	// end-by-date leaves the supply cap at items available
	assert.Equal(t, uint64(100), cfg.EffectiveSupplyCap())
}

func TestToConfigSPLSymbolFallback(t *testing.T) {
	var m [32]byte
	st := saleStateAccount{TokenMint: &m}

	cfg := testReader("", 6).toConfig(st)
	assert.Equal(t, "TOKEN", cfg.Payment.Symbol)
}
