package sale

import (
	"strings"
	"time"
)

// SaleConfig is the immutable-per-session snapshot of the on-chain sale state.
// A refresh produces a brand-new value; nothing mutates one in place.
type SaleConfig struct {
	StateAddress string // sale state account (base58)
	Authority    string // sale authority (base58)
	Treasury     string // where payments land (base58)

	ItemsAvailable uint64 // configured total supply
	Price          uint64 // base units of Payment

	Payment PaymentUnit

	GoLiveDate *time.Time // nil = live immediately

	End        *EndSettings
	Whitelist  *WhitelistSettings
	Gatekeeper *GatekeeperSettings

	FetchedAt time.Time
}

// PaymentUnit describes what a mint is paid in.
// Empty TokenMint means native SOL.
type PaymentUnit struct {
	TokenMint string
	Symbol    string
	Decimals  uint8
}

// Native returns true when payment is in native SOL (lamports).
func (p PaymentUnit) Native() bool {
	return strings.TrimSpace(p.TokenMint) == ""
}

// NativePayment is the default payment unit.
func NativePayment() PaymentUnit {
	return PaymentUnit{Symbol: "SOL", Decimals: NativeDecimals}
}

// EndKind distinguishes the two end conditions of a sale.
type EndKind uint8

const (
	EndByDate EndKind = iota
	EndByAmount
)

// EndSettings ends the sale either at a wall-clock date or after a
// redeemed-amount threshold, depending on Kind.
type EndSettings struct {
	Kind   EndKind
	Date   time.Time // valid when Kind == EndByDate
	Amount uint64    // valid when Kind == EndByAmount
}

// WhitelistSettings configures token-gated (and optionally discounted) minting.
// A nil DiscountPrice means the whitelist token grants access only.
type WhitelistSettings struct {
	TokenMint     string
	Presale       bool
	BurnEveryTime bool
	DiscountPrice *uint64 // base units of Payment
}

// GatekeeperSettings declares a mandatory out-of-band challenge network
// (human verification) that must be satisfied before minting.
type GatekeeperSettings struct {
	Network     string
	ExpireOnUse bool
}

// EffectiveSupplyCap is the supply actually reachable: the configured supply,
// further limited by an end-by-amount threshold when one exists.
func (c SaleConfig) EffectiveSupplyCap() uint64 {
	cap := c.ItemsAvailable
	if c.End != nil && c.End.Kind == EndByAmount && c.End.Amount < cap {
		cap = c.End.Amount
	}
	return cap
}

// WhitelistOnly reports whether the whitelist grants access without a discount
// (possession of the token is the only way in, at full price).
func (c SaleConfig) WhitelistOnly() bool {
	return c.Whitelist != nil && c.Whitelist.Presale && c.Whitelist.DiscountPrice == nil
}
