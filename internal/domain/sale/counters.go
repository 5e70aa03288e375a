package sale

// SaleCounters is the locally tracked, UI-facing view of the sale's numbers.
// Owned by the session orchestrator; after the initial seed only the
// optimistic reducer writes it.
//
// Version is a monotonic sequence bumped on every write. A snapshot refresh
// that started before an optimistic write must not clobber it; the
// orchestrator compares Version around the fetch.
type SaleCounters struct {
	ItemsRedeemed  uint64
	ItemsRemaining uint64

	WalletLamports   uint64 // native-currency balance of the connected wallet
	WhitelistBalance uint64 // whitelist-token balance of the connected wallet

	Version uint64
}

// Seed builds counters from a fresh snapshot. ItemsRemaining is always
// derived: max(0, effective cap - redeemed).
func Seed(cfg SaleConfig, redeemed, walletLamports, whitelistBalance, version uint64) SaleCounters {
	cap := cfg.EffectiveSupplyCap()
	remaining := uint64(0)
	if redeemed < cap {
		remaining = cap - redeemed
	}
	return SaleCounters{
		ItemsRedeemed:    redeemed,
		ItemsRemaining:   remaining,
		WalletLamports:   walletLamports,
		WhitelistBalance: whitelistBalance,
		Version:          version,
	}
}
