package solana

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"launchpad/internal/application/usecase"
)

// KeystoreSigner implements usecase.WalletSigner from a locally held keypair
// (the JSON int-array export format). This stands in for a browser wallet
// adapter in headless runs; a wallet that is not loaded, or that does not
// match the requested address, refuses to sign.
type KeystoreSigner struct {
	mu      sync.RWMutex
	address string
	raw     string // keypair JSON int array; normalized lazily by the submitter
}

var _ usecase.WalletSigner = (*KeystoreSigner)(nil)

// NewKeystoreSignerFromEnv loads WALLET_KEYPAIR (inline JSON int array) or
// WALLET_KEYPAIR_FILE. An empty keystore is valid: signing is declined until
// a key is loaded.
func NewKeystoreSignerFromEnv() (*KeystoreSigner, error) {
	ks := &KeystoreSigner{}

	raw := strings.TrimSpace(os.Getenv("WALLET_KEYPAIR"))
	if raw == "" {
		if path := strings.TrimSpace(os.Getenv("WALLET_KEYPAIR_FILE")); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("keystore: read %s: %w", path, err)
			}
			raw = strings.TrimSpace(string(b))
		}
	}
	if raw == "" {
		return ks, nil
	}
	if err := ks.Load(raw); err != nil {
		return nil, err
	}
	return ks, nil
}

// Load installs a keypair and resolves its address.
func (k *KeystoreSigner) Load(rawKeypair string) error {
	acc, err := normalizeToAccount(strings.TrimSpace(rawKeypair))
	if err != nil {
		return fmt.Errorf("keystore: %w", err)
	}
	k.mu.Lock()
	k.address = acc.PublicKey.ToBase58()
	k.raw = strings.TrimSpace(rawKeypair)
	k.mu.Unlock()
	return nil
}

// Address returns the loaded wallet address, or "" when empty.
func (k *KeystoreSigner) Address() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.address
}

// Signer returns the signing capability for wallet, or ErrSignerDeclined when
// no matching key is held.
func (k *KeystoreSigner) Signer(_ context.Context, wallet string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.raw == "" {
		return nil, fmt.Errorf("%w: no keypair loaded", usecase.ErrSignerDeclined)
	}
	if strings.TrimSpace(wallet) != k.address {
		return nil, fmt.Errorf("%w: loaded key is for a different wallet", usecase.ErrSignerDeclined)
	}
	return k.raw, nil
}
