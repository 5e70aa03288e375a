package sale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   uint64
		decimals uint8
		want     string
	}{
		{1_500_000_000, 9, "1.5"},
		{1_000_000_000, 9, "1"},
		{12_000_000, 9, "0.012"},
		{0, 9, "0"},
		{1, 9, "0.000000001"},
		{5555, 0, "5555"},
		{1_234_560, 6, "1.23456"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatAmount(tc.amount, tc.decimals),
			"amount=%d decimals=%d", tc.amount, tc.decimals)
	}
}

func TestFormatPriceUsesPaymentDecimals(t *testing.T) {
	res := Resolution{
		UnitPrice: 2_500_000,
		Payment:   PaymentUnit{TokenMint: "Tok", Symbol: "PAY", Decimals: 6},
	}
	assert.Equal(t, "2.5", FormatPrice(res))
}
