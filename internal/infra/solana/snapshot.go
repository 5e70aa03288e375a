package solana

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"

	"launchpad/internal/application/usecase"
	"launchpad/internal/domain/sale"
)

var (
	ErrSnapshotNotConfigured = errors.New("snapshot_reader: not configured")
	ErrSnapshotStateEmpty    = errors.New("snapshot_reader: state address is empty")
	ErrSnapshotAccountEmpty  = errors.New("snapshot_reader: state account is empty")
	ErrSnapshotDataShort     = errors.New("snapshot_reader: state account data too short")
)

// accountDiscriminatorLen is the 8-byte prefix in front of the borsh payload.
const accountDiscriminatorLen = 8

// saleStateAccount is the on-chain layout of the sale program's state
// account (borsh, after the discriminator). Pointer fields are borsh options.
type saleStateAccount struct {
	Authority [32]byte
	Treasury  [32]byte
	TokenMint *[32]byte // payment SPL token; nil = native SOL

	Price          uint64
	ItemsAvailable uint64
	ItemsRedeemed  uint64

	GoLiveDate  *int64
	EndSettings *endSettingsLayout
	Whitelist   *whitelistLayout
	Gatekeeper  *gatekeeperLayout
}

type endSettingsLayout struct {
	Kind   uint8 // 0 = date (unix seconds), 1 = amount
	Number uint64
}

type whitelistLayout struct {
	Mode          uint8 // 0 = burn every time, 1 = never burn
	Mint          [32]byte
	Presale       bool
	DiscountPrice *uint64
}

type gatekeeperLayout struct {
	Network     [32]byte
	ExpireOnUse bool
}

// PaymentOverride carries the display configuration of an SPL payment token
// (the chain does not store a symbol).
type PaymentOverride struct {
	Symbol   string
	Decimals uint8
}

// SnapshotReader implements usecase.SnapshotQuery against the sale program's
// state account.
type SnapshotReader struct {
	RPC          *client.Client
	StateAddress string
	SPLPayment   PaymentOverride // used only when the state declares a token mint

	now func() time.Time
}

var _ usecase.SnapshotQuery = (*SnapshotReader)(nil)

func NewSnapshotReader(rpc *client.Client, stateAddress string, splPayment PaymentOverride) *SnapshotReader {
	return &SnapshotReader{
		RPC:          rpc,
		StateAddress: strings.TrimSpace(stateAddress),
		SPLPayment:   splPayment,
		now:          time.Now,
	}
}

// FetchSaleState reads and decodes the state account into the immutable
// SaleConfig plus the authoritative counter seed.
func (r *SnapshotReader) FetchSaleState(ctx context.Context) (sale.SaleConfig, usecase.SnapshotSeed, error) {
	if r == nil || r.RPC == nil {
		return sale.SaleConfig{}, usecase.SnapshotSeed{}, ErrSnapshotNotConfigured
	}
	if r.StateAddress == "" {
		return sale.SaleConfig{}, usecase.SnapshotSeed{}, ErrSnapshotStateEmpty
	}

	info, err := r.RPC.GetAccountInfo(ctx, r.StateAddress)
	if err != nil {
		return sale.SaleConfig{}, usecase.SnapshotSeed{}, fmt.Errorf("snapshot_reader: GetAccountInfo: %w", err)
	}
	if len(info.Data) == 0 {
		return sale.SaleConfig{}, usecase.SnapshotSeed{}, ErrSnapshotAccountEmpty
	}
	if len(info.Data) <= accountDiscriminatorLen {
		return sale.SaleConfig{}, usecase.SnapshotSeed{}, ErrSnapshotDataShort
	}

	var st saleStateAccount
	if err := borsh.Deserialize(&st, info.Data[accountDiscriminatorLen:]); err != nil {
		return sale.SaleConfig{}, usecase.SnapshotSeed{}, fmt.Errorf("snapshot_reader: decode state: %w", err)
	}

	cfg := r.toConfig(st)
	seed := usecase.SnapshotSeed{ItemsRedeemed: st.ItemsRedeemed}
	return cfg, seed, nil
}

func (r *SnapshotReader) toConfig(st saleStateAccount) sale.SaleConfig {
	cfg := sale.SaleConfig{
		StateAddress:   r.StateAddress,
		Authority:      base58.Encode(st.Authority[:]),
		Treasury:       base58.Encode(st.Treasury[:]),
		ItemsAvailable: st.ItemsAvailable,
		Price:          st.Price,
		Payment:        sale.NativePayment(),
		FetchedAt:      r.now(),
	}

	if st.TokenMint != nil {
		cfg.Payment = sale.PaymentUnit{
			TokenMint: base58.Encode(st.TokenMint[:]),
			Symbol:    r.SPLPayment.Symbol,
			Decimals:  r.SPLPayment.Decimals,
		}
		if cfg.Payment.Symbol == "" {
			cfg.Payment.Symbol = "TOKEN"
		}
	}

	if st.GoLiveDate != nil {
		t := time.Unix(*st.GoLiveDate, 0).UTC()
		cfg.GoLiveDate = &t
	}

	if es := st.EndSettings; es != nil {
		end := &sale.EndSettings{}
		if es.Kind == 0 {
			end.Kind = sale.EndByDate
			end.Date = time.Unix(int64(es.Number), 0).UTC()
		} else {
			end.Kind = sale.EndByAmount
			end.Amount = es.Number
		}
		cfg.End = end
	}

	if wl := st.Whitelist; wl != nil {
		cfg.Whitelist = &sale.WhitelistSettings{
			TokenMint:     base58.Encode(wl.Mint[:]),
			Presale:       wl.Presale,
			BurnEveryTime: wl.Mode == 0,
			DiscountPrice: wl.DiscountPrice,
		}
	}

	if gk := st.Gatekeeper; gk != nil {
		cfg.Gatekeeper = &sale.GatekeeperSettings{
			Network:     base58.Encode(gk.Network[:]),
			ExpireOnUse: gk.ExpireOnUse,
		}
	}

	return cfg
}
