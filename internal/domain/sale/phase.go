package sale

import "time"

// Phase is the discrete state of the sale as seen by one session.
// Derived, never persisted; recomputed on every resolution pass.
type Phase uint8

const (
	PhaseNotStarted Phase = iota
	PhasePresaleWhitelistOnly
	PhasePresaleDiscounted
	PhasePublicSale
	PhaseEnded
	PhaseSoldOut
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhasePresaleWhitelistOnly:
		return "presale_whitelist_only"
	case PhasePresaleDiscounted:
		return "presale_discounted"
	case PhasePublicSale:
		return "public_sale"
	case PhaseEnded:
		return "ended"
	case PhaseSoldOut:
		return "sold_out"
	}
	return "unknown"
}

// Terminal reports whether no further mint can happen in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseEnded || p == PhaseSoldOut
}

// Resolution is the output of one resolution pass: the phase plus everything
// the presentation layer needs to price and label the mint button.
type Resolution struct {
	Phase     Phase
	UnitPrice uint64 // effective price, base units of Payment
	Payment   PaymentUnit
	SupplyCap uint64 // display cap (already limited by end-by-amount)

	GoLiveDate *time.Time
	EndDate    *time.Time
}

// Resolve derives the current phase and effective price. Pure: no I/O, no
// caching; callers re-run it on every refresh and countdown tick.
//
// Priority order:
//  1. sold out (end-by-amount caps the supply; redeemed >= cap wins over all)
//  2. ended (end-by-date reached)
//  3. presale (whitelist presale-flagged and the wallet holds the token)
//  4. not started / public sale by go-live time
func Resolve(cfg SaleConfig, ctr SaleCounters, now time.Time, hasWhitelistBalance bool) Resolution {
	res := Resolution{
		UnitPrice:  cfg.Price,
		Payment:    cfg.Payment,
		SupplyCap:  cfg.EffectiveSupplyCap(),
		GoLiveDate: cfg.GoLiveDate,
	}
	if cfg.End != nil && cfg.End.Kind == EndByDate {
		d := cfg.End.Date
		res.EndDate = &d
	}

	// 1) sold out
	if ctr.ItemsRedeemed >= res.SupplyCap {
		res.Phase = PhaseSoldOut
		return res
	}

	// 2) ended by date
	if res.EndDate != nil && !now.Before(*res.EndDate) {
		res.Phase = PhaseEnded
		return res
	}

	// 3) presale via whitelist token
	if wl := cfg.Whitelist; wl != nil && wl.Presale && hasWhitelistBalance {
		if wl.DiscountPrice == nil {
			res.Phase = PhasePresaleWhitelistOnly
		} else {
			res.Phase = PhasePresaleDiscounted
			res.UnitPrice = *wl.DiscountPrice
		}
		return res
	}

	// 4) not started / public
	if cfg.GoLiveDate != nil && now.Before(*cfg.GoLiveDate) {
		res.Phase = PhaseNotStarted
		return res
	}
	res.Phase = PhasePublicSale
	return res
}
