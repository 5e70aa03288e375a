package usecase

import (
	"context"
	"errors"

	"launchpad/internal/domain/sale"
)

// ============================================================
// Ports (implemented by internal/infra/solana and the wallet layer)
// ============================================================

// SnapshotQuery reads the sale program's state account: configuration plus the
// authoritative counter seed as of query time. Failures are transient
// connectivity problems; the caller keeps its previous snapshot and retries on
// the next refresh.
type SnapshotQuery interface {
	FetchSaleState(ctx context.Context) (sale.SaleConfig, SnapshotSeed, error)
}

// SnapshotSeed carries the remote counters read alongside the config.
type SnapshotSeed struct {
	ItemsRedeemed uint64
}

// BalanceQuery reads account balances from the ledger. Implementations treat
// absence/errors as balance 0 with a logged warning, never a fatal error.
type BalanceQuery interface {
	// NativeBalance returns the wallet's lamport balance.
	NativeBalance(ctx context.Context, wallet string) (uint64, error)
	// TokenBalance returns the wallet's balance of tokenMint, in base units.
	TokenBalance(ctx context.Context, wallet string, tokenMint string) (uint64, error)
}

// WalletSigner provides the connected wallet's signing capability.
// The signer value is opaque to the usecase layer; the solana adapter
// normalizes it (types.Account, 64-byte key, JSON int array).
// A refusal to sign returns ErrSignerDeclined.
type WalletSigner interface {
	Signer(ctx context.Context, wallet string) (any, error)
}

// ErrSignerDeclined is returned by WalletSigner when the user aborted signing.
var ErrSignerDeclined = errors.New("signer: user declined to sign")

// TransactionSubmitter builds, signs, and submits one mint transaction.
type TransactionSubmitter interface {
	SubmitMint(ctx context.Context, in SubmitMintInput) (SubmitMintResult, error)
}

type SubmitMintInput struct {
	Wallet string // receiving + paying wallet (base58)
	Signer any    // wallet signing capability from WalletSigner
}

type SubmitMintResult struct {
	TxSignature string
	AssetMint   string // the freshly generated single-use asset identity
}

// TxState is the network's view of a submitted transaction.
type TxState uint8

const (
	TxPending TxState = iota
	TxSettledOK
	TxSettledErr
)

// TxStatus is one confirmation poll result. ErrCode is the program's custom
// error code when State == TxSettledErr.
type TxStatus struct {
	State      TxState
	ErrCode    int64
	ErrMessage string
}

// TransactionStatusQuery polls confirmation state for a transaction reference.
type TransactionStatusQuery interface {
	Status(ctx context.Context, txSignature string) (TxStatus, error)
}

// ChallengeProvider reports whether the out-of-band verification flow has been
// satisfied for a wallet. The flow itself happens elsewhere; this core only
// treats it as an opaque precondition.
type ChallengeProvider interface {
	Satisfied(ctx context.Context, wallet string) (bool, error)
}
