package sale

import "strconv"

// NativeDecimals is the protocol-defined precision of the native currency
// (1 SOL = 1e9 lamports).
const NativeDecimals = 9

// EstimatedFeeLamports is the fixed network-fee estimate deducted from the
// wallet balance after a confirmed native-currency mint (~0.012 SOL).
const EstimatedFeeLamports = 12_000_000

// pow10 per decimals count; Solana token decimals never exceed 9.
var pow10 = [NativeDecimals + 1]uint64{
	1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000,
}

// FormatAmount renders an integer base-unit amount as a decimal string using
// integer div/mod only. Trailing zeros in the fraction are trimmed.
// Floating point is deliberately kept out of the money path.
func FormatAmount(amount uint64, decimals uint8) string {
	if decimals == 0 {
		return strconv.FormatUint(amount, 10)
	}
	if decimals > NativeDecimals {
		decimals = NativeDecimals
	}
	div := pow10[decimals]
	whole := amount / div
	frac := amount % div

	s := strconv.FormatUint(whole, 10)
	if frac == 0 {
		return s
	}

	fs := strconv.FormatUint(frac, 10)
	for len(fs) < int(decimals) {
		fs = "0" + fs
	}
	for len(fs) > 0 && fs[len(fs)-1] == '0' {
		fs = fs[:len(fs)-1]
	}
	return s + "." + fs
}

// FormatPrice renders the effective price of a resolution in its payment unit.
func FormatPrice(res Resolution) string {
	return FormatAmount(res.UnitPrice, res.Payment.Decimals)
}
