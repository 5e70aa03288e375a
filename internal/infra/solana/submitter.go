package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"

	"launchpad/internal/application/usecase"
	"launchpad/internal/domain/sale"
)

var (
	ErrSubmitterNotConfigured  = errors.New("mint_submitter: not configured")
	ErrSubmitterWalletEmpty    = errors.New("mint_submitter: wallet is empty")
	ErrSubmitterSignerEmpty    = errors.New("mint_submitter: signer is nil")
	ErrSubmitterInvalidSigner  = errors.New("mint_submitter: invalid signer type")
	ErrSubmitterInvalidPrivKey = errors.New("mint_submitter: invalid private key bytes")
	ErrSubmitterSignerMismatch = errors.New("mint_submitter: signer does not match wallet")
)

// mintInstructionData is the borsh payload of the sale program's MintOne
// instruction.
type mintInstructionData struct {
	Instruction uint8 // 0 = MintOne
}

// MintSubmitter implements usecase.TransactionSubmitter: it assembles the full
// mint transaction (new asset mint account, mint init, receiver ATA, sale
// program instruction), signs with the wallet + asset keypair, and sends it.
type MintSubmitter struct {
	RPC       *client.Client
	ProgramID string
	Snapshots usecase.SnapshotQuery // current sale state drives the account list
}

var _ usecase.TransactionSubmitter = (*MintSubmitter)(nil)

func NewMintSubmitter(rpc *client.Client, programID string, snapshots usecase.SnapshotQuery) *MintSubmitter {
	return &MintSubmitter{
		RPC:       rpc,
		ProgramID: strings.TrimSpace(programID),
		Snapshots: snapshots,
	}
}

// SubmitMint does:
// 1) read the current sale state (treasury / whitelist / payment accounts)
// 2) generate the single-use asset mint keypair
// 3) assemble: create mint account -> initialize mint -> receiver ATA ->
//    sale program MintOne instruction
// 4) sign (wallet + asset mint) and send
func (s *MintSubmitter) SubmitMint(ctx context.Context, in usecase.SubmitMintInput) (usecase.SubmitMintResult, error) {
	if s == nil || s.RPC == nil || s.Snapshots == nil || s.ProgramID == "" {
		return usecase.SubmitMintResult{}, ErrSubmitterNotConfigured
	}
	wallet := strings.TrimSpace(in.Wallet)
	if wallet == "" {
		return usecase.SubmitMintResult{}, ErrSubmitterWalletEmpty
	}
	payerAcc, err := normalizeToAccount(in.Signer)
	if err != nil {
		return usecase.SubmitMintResult{}, err
	}
	if payerAcc.PublicKey.ToBase58() != wallet {
		return usecase.SubmitMintResult{}, ErrSubmitterSignerMismatch
	}

	// 1) sale state
	cfg, _, err := s.Snapshots.FetchSaleState(ctx)
	if err != nil {
		return usecase.SubmitMintResult{}, fmt.Errorf("mint_submitter: read sale state: %w", err)
	}

	payer := payerAcc.PublicKey
	state := common.PublicKeyFromString(cfg.StateAddress)
	treasury := common.PublicKeyFromString(cfg.Treasury)
	program := common.PublicKeyFromString(s.ProgramID)

	// 2) single-use asset identity
	assetMint := types.NewAccount()

	ata, _, err := common.FindAssociatedTokenAddress(payer, assetMint.PublicKey)
	if err != nil {
		return usecase.SubmitMintResult{}, fmt.Errorf("mint_submitter: derive asset ATA: %w", err)
	}

	mintRent, err := s.RPC.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return usecase.SubmitMintResult{}, fmt.Errorf("mint_submitter: GetMinimumBalanceForRentExemption: %w", err)
	}

	// 3) instructions
	ins := []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      assetMint.PublicKey,
			Owner:    common.TokenProgramID,
			Lamports: mintRent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   0,
			Mint:       assetMint.PublicKey,
			MintAuth:   state, // the program mints via CPI
			FreezeAuth: &state,
		}),
		associated_token_account.CreateAssociatedTokenAccount(
			associated_token_account.CreateAssociatedTokenAccountParam{
				Funder:                 payer,
				Owner:                  payer,
				Mint:                   assetMint.PublicKey,
				AssociatedTokenAccount: ata,
			},
		),
	}

	mintIx, err := s.buildMintInstruction(cfg, program, state, treasury, payer, assetMint.PublicKey, ata)
	if err != nil {
		return usecase.SubmitMintResult{}, err
	}
	ins = append(ins, mintIx)

	latest, err := s.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return usecase.SubmitMintResult{}, fmt.Errorf("mint_submitter: GetLatestBlockhash: %w", err)
	}

	// 4) sign + send
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        payer,
			RecentBlockhash: latest.Blockhash,
			Instructions:    ins,
		}),
		Signers: []types.Account{payerAcc, assetMint},
	})
	if err != nil {
		return usecase.SubmitMintResult{}, fmt.Errorf("mint_submitter: NewTransaction: %w", err)
	}

	sig, err := s.RPC.SendTransaction(ctx, tx)
	if err != nil {
		return usecase.SubmitMintResult{}, fmt.Errorf("mint_submitter: SendTransaction: %w", err)
	}

	log.Printf("[mint_submitter] submitted tx=%s asset=%s payer=%s",
		maskShort(sig), maskShort(assetMint.PublicKey.ToBase58()), maskShort(wallet))

	return usecase.SubmitMintResult{
		TxSignature: sig,
		AssetMint:   assetMint.PublicKey.ToBase58(),
	}, nil
}

// buildMintInstruction addresses the sale program. Whitelist and SPL-payment
// accounts are appended only when the sale state declares them.
//
// Accounts:
//  0. [writable] sale state
//  1. [writable,signer] payer (receiver + funder)
//  2. [writable] treasury
//  3. [writable,signer] new asset mint
//  4. [writable] payer's ATA for the asset
//  5. [] token program
//  6. [] system program
//  7. [writable] payer's whitelist token ATA   (whitelist sales)
//  8. [writable] whitelist token mint          (burn-every-time sales)
//  9. [writable] payer's payment token ATA     (SPL-payment sales)
func (s *MintSubmitter) buildMintInstruction(
	cfg sale.SaleConfig,
	program, state, treasury, payer, assetMint, assetATA common.PublicKey,
) (types.Instruction, error) {
	accounts := []types.AccountMeta{
		{PubKey: state, IsSigner: false, IsWritable: true},
		{PubKey: payer, IsSigner: true, IsWritable: true},
		{PubKey: treasury, IsSigner: false, IsWritable: true},
		{PubKey: assetMint, IsSigner: true, IsWritable: true},
		{PubKey: assetATA, IsSigner: false, IsWritable: true},
		{PubKey: common.TokenProgramID, IsSigner: false, IsWritable: false},
		{PubKey: common.SystemProgramID, IsSigner: false, IsWritable: false},
	}

	if wl := cfg.Whitelist; wl != nil {
		wlMint := common.PublicKeyFromString(wl.TokenMint)
		wlATA, _, err := common.FindAssociatedTokenAddress(payer, wlMint)
		if err != nil {
			return types.Instruction{}, fmt.Errorf("mint_submitter: derive whitelist ATA: %w", err)
		}
		accounts = append(accounts, types.AccountMeta{PubKey: wlATA, IsSigner: false, IsWritable: true})
		if wl.BurnEveryTime {
			accounts = append(accounts, types.AccountMeta{PubKey: wlMint, IsSigner: false, IsWritable: true})
		}
	}

	if !cfg.Payment.Native() {
		payMint := common.PublicKeyFromString(cfg.Payment.TokenMint)
		payATA, _, err := common.FindAssociatedTokenAddress(payer, payMint)
		if err != nil {
			return types.Instruction{}, fmt.Errorf("mint_submitter: derive payment ATA: %w", err)
		}
		accounts = append(accounts, types.AccountMeta{PubKey: payATA, IsSigner: false, IsWritable: true})
	}

	data, err := borsh.Serialize(mintInstructionData{Instruction: 0})
	if err != nil {
		return types.Instruction{}, fmt.Errorf("mint_submitter: serialize instruction: %w", err)
	}

	return types.Instruction{
		ProgramID: program,
		Accounts:  accounts,
		Data:      data,
	}, nil
}

// normalizeToAccount converts the opaque signer to a blocto types.Account.
// Supports:
// - types.Account / *types.Account
// - []byte (len 64)
// - string: JSON int array "[1,2,...]" (keystore export format)
func normalizeToAccount(signerAny any) (types.Account, error) {
	switch t := signerAny.(type) {
	case types.Account:
		return t, nil
	case *types.Account:
		if t == nil {
			return types.Account{}, ErrSubmitterSignerEmpty
		}
		return *t, nil
	case []byte:
		if len(t) != 64 {
			return types.Account{}, fmt.Errorf("%w: want 64 bytes, got %d", ErrSubmitterInvalidPrivKey, len(t))
		}
		acc, err := types.AccountFromBytes(t)
		if err != nil {
			return types.Account{}, fmt.Errorf("mint_submitter: AccountFromBytes: %w", err)
		}
		return acc, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return types.Account{}, ErrSubmitterSignerEmpty
		}
		var ints []int
		if err := json.Unmarshal([]byte(s), &ints); err != nil {
			return types.Account{}, fmt.Errorf("%w: signer string is not json int array: %v", ErrSubmitterInvalidSigner, err)
		}
		b := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return types.Account{}, fmt.Errorf("%w: byte out of range at %d: %d", ErrSubmitterInvalidPrivKey, i, v)
			}
			b[i] = byte(v)
		}
		if len(b) != 64 {
			return types.Account{}, fmt.Errorf("%w: want 64 bytes, got %d", ErrSubmitterInvalidPrivKey, len(b))
		}
		acc, err := types.AccountFromBytes(b)
		if err != nil {
			return types.Account{}, fmt.Errorf("mint_submitter: AccountFromBytes(json): %w", err)
		}
		return acc, nil
	default:
		return types.Account{}, fmt.Errorf("%w: %T", ErrSubmitterInvalidSigner, signerAny)
	}
}
