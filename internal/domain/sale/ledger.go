package sale

import "launchpad/internal/domain/mint"

// Apply folds one terminal mint outcome into the counters without waiting for
// a remote resync. Pure reducer: no I/O, input counters are not mutated.
//
// Only Confirmed changes anything:
//   - remaining -1 (floor 0), redeemed +1
//   - effective price (+ fixed fee estimate on native-currency sessions)
//     deducted from the wallet balance
//   - burn-every-time whitelists lose one token, which can end presale
//     eligibility on the next resolution pass
//
// Failed and TimedOut leave every counter untouched; the caller schedules a
// reconciling refresh instead (on timeout the transaction may still land).
func Apply(cfg SaleConfig, res Resolution, ctr SaleCounters, out mint.Outcome) SaleCounters {
	if out.Status != mint.StatusConfirmed {
		return ctr
	}

	next := ctr
	if next.ItemsRemaining > 0 {
		next.ItemsRemaining--
	}
	next.ItemsRedeemed++

	cost := res.UnitPrice
	if res.Payment.Native() {
		cost += EstimatedFeeLamports
		if next.WalletLamports > cost {
			next.WalletLamports -= cost
		} else {
			next.WalletLamports = 0
		}
	}

	if wl := cfg.Whitelist; wl != nil && wl.BurnEveryTime && next.WhitelistBalance > 0 {
		next.WhitelistBalance--
	}

	next.Version = ctr.Version + 1
	return next
}
