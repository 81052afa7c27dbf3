package unit

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDecimal(t *testing.T) {
	oneEther, ok := new(big.Int).SetString("1000000000000000000", 10)
	require.True(t, ok)

	testCases := []struct {
		name     string
		raw      *big.Int
		decimals uint8
		expected string
	}{
		{name: "one ether", raw: oneEther, decimals: 18, expected: "1"},
		{name: "half usdt", raw: big.NewInt(500_000), decimals: 6, expected: "0.5"},
		{name: "satoshi precision", raw: big.NewInt(1), decimals: 8, expected: "0.00000001"},
		{name: "zero decimals", raw: big.NewInt(42), decimals: 0, expected: "42"},
		{name: "nil is zero", raw: nil, decimals: 18, expected: "0"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ToDecimal(tc.raw, tc.decimals)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)), "got %s", got.String())
		})
	}
}

func TestToDecimal_LargeAmountKeepsIntegerPart(t *testing.T) {
	raw, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	got := ToDecimal(raw, 18)
	assert.Equal(t, "123456789012.34567890123456789", got.String())
}

func TestFromDecimal(t *testing.T) {
	raw, err := FromDecimal(decimal.RequireFromString("0.5"), 6)
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), raw.Int64())

	_, err = FromDecimal(decimal.RequireFromString("0.0000001"), 6)
	require.ErrorIs(t, err, ErrPrecision)
}

func TestEqual_IgnoresTrailingZeros(t *testing.T) {
	assert.True(t, Equal(big.NewInt(500_000), 6, decimal.RequireFromString("0.500000")))
	assert.True(t, Equal(big.NewInt(50_000_000), 8, decimal.RequireFromString("0.5")))
	assert.False(t, Equal(big.NewInt(500_001), 6, decimal.RequireFromString("0.5")))
}
