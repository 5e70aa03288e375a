package solana

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"

	"launchpad/internal/application/usecase"
)

var ErrBalanceReaderNotConfigured = errors.New("balance_reader: not configured")

// BalanceReader implements usecase.BalanceQuery.
//
// Behavior notes:
//   - a missing token account (wallet never held the token) and transient RPC
//     errors both degrade to balance 0 with a logged warning; balance reads
//     are never fatal to the session.
type BalanceReader struct {
	RPC *client.Client
}

var _ usecase.BalanceQuery = (*BalanceReader)(nil)

func NewBalanceReader(rpc *client.Client) *BalanceReader {
	return &BalanceReader{RPC: rpc}
}

// NativeBalance returns the wallet's lamport balance.
func (r *BalanceReader) NativeBalance(ctx context.Context, wallet string) (uint64, error) {
	if r == nil || r.RPC == nil {
		return 0, ErrBalanceReaderNotConfigured
	}
	addr := strings.TrimSpace(wallet)
	if addr == "" {
		return 0, nil
	}

	bal, err := r.RPC.GetBalance(ctx, addr)
	if err != nil {
		log.Printf("[balance_reader] WARN native balance read failed wallet=%s: %v", maskShort(addr), err)
		return 0, nil
	}
	return bal, nil
}

// TokenBalance returns the wallet's balance of tokenMint in base units,
// looked up via the associated token account.
func (r *BalanceReader) TokenBalance(ctx context.Context, wallet string, tokenMint string) (uint64, error) {
	if r == nil || r.RPC == nil {
		return 0, ErrBalanceReaderNotConfigured
	}
	addr := strings.TrimSpace(wallet)
	mintAddr := strings.TrimSpace(tokenMint)
	if addr == "" || mintAddr == "" {
		return 0, nil
	}

	owner := common.PublicKeyFromString(addr)
	mint := common.PublicKeyFromString(mintAddr)
	ata, _, err := common.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		log.Printf("[balance_reader] WARN derive ATA failed wallet=%s mint=%s: %v", maskShort(addr), maskShort(mintAddr), err)
		return 0, nil
	}

	amount, err := r.RPC.GetTokenAccountBalance(ctx, ata.ToBase58())
	if err != nil {
		// usually: the account simply does not exist
		log.Printf("[balance_reader] WARN token balance read failed ata=%s: %v", maskShort(ata.ToBase58()), err)
		return 0, nil
	}
	return amount.Amount, nil
}
