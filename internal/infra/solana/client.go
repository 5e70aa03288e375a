// Package solana adapts the usecase ports to the Solana JSON-RPC surface via
// the blocto SDK: sale-state snapshots, balance reads, transaction submission,
// and confirmation status.
package solana

import (
	"os"
	"strings"

	"github.com/blocto/solana-go-sdk/client"
)

const defaultDevnetRPC = "https://api.devnet.solana.com"

// NewRPCClient creates the shared RPC client.
// Endpoint resolution order:
// 1) explicit rpcURL argument
// 2) SOLANA_RPC_ENDPOINT env
// 3) devnet default
func NewRPCClient(rpcURL string) *client.Client {
	u := strings.TrimSpace(rpcURL)
	if u == "" {
		u = strings.TrimSpace(os.Getenv("SOLANA_RPC_ENDPOINT"))
	}
	if u == "" {
		u = defaultDevnetRPC
	}
	return client.NewClient(u)
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
