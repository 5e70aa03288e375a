package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service's environment-driven settings.
type Config struct {
	Port string

	// Solana
	RPCEndpoint  string
	Cluster      string // "mainnet-beta" | "devnet" | "testnet"
	ProgramID    string // sale program
	StateAddress string // sale state account

	// SPL payment display (only used when the sale charges in a token)
	SPLTokenSymbol   string
	SPLTokenDecimals uint8

	// Mint confirmation
	TxTimeout       time.Duration
	ConfirmPollRate time.Duration

	// Background snapshot refresh
	RefreshInterval time.Duration
}

// Load reads the environment and returns the config.
func Load() *Config {
	return &Config{
		Port: getenvDefault("PORT", "8080"),

		RPCEndpoint:  os.Getenv("SOLANA_RPC_ENDPOINT"),
		Cluster:      getenvDefault("SOLANA_CLUSTER", "devnet"),
		ProgramID:    os.Getenv("SALE_PROGRAM_ID"),
		StateAddress: os.Getenv("SALE_STATE_ADDRESS"),

		SPLTokenSymbol:   getenvDefault("SPL_TOKEN_SYMBOL", "TOKEN"),
		SPLTokenDecimals: getenvUint8("SPL_TOKEN_DECIMALS", 9),

		TxTimeout:       getenvSeconds("TX_TIMEOUT_SECONDS", 30*time.Second),
		ConfirmPollRate: getenvMillis("CONFIRM_POLL_MS", 2*time.Second),
		RefreshInterval: getenvSeconds("REFRESH_INTERVAL_SECONDS", 30*time.Second),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvUint8(key string, def uint8) uint8 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return def
	}
	return uint8(n)
}

func getenvSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func getenvMillis(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}
