package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	pow10 := func(n int64) *big.Int {
		return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
	}

	tests := []struct {
		name   string
		amount string
		unit   Unit
		want   *big.Int
	}{
		{"one ether", "1", Ether, pow10(18)},
		{"one gwei", "1", Gwei, pow10(9)},
		{"wei is the default", "42", "", big.NewInt(42)},
		{"zero ether", "0", Ether, big.NewInt(0)},
		{"zero gwei", "0", Gwei, big.NewInt(0)},
		{"fractional ether", "1.5", Ether, new(big.Int).Mul(big.NewInt(15), pow10(17))},
		{"leading dot", ".5", Gwei, big.NewInt(500_000_000)},
		{"unit is case insensitive", "2", "GWEI", big.NewInt(2_000_000_000)},
		{"large amounts stay exact", "123456789", Ether, new(big.Int).Mul(big.NewInt(123456789), pow10(18))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestToBaseUnits_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		unit   Unit
	}{
		{"empty", "", Ether},
		{"negative", "-1", Ether},
		{"not a number", "abc", Gwei},
		{"too many decimals", "0.1", Wei},
		{"two dots", "1.2.3", Ether},
		{"unknown unit", "1", "finney"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToBaseUnits(tt.amount, tt.unit)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestBufferGas(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{100, 120},
		{0, 0},
		{7, 8},
		{9, 10},
		{21000, 25200},
	}

	for _, tt := range tests {
		got := BufferGas(big.NewInt(tt.in))
		assert.Equal(t, tt.want, got.Int64(), "BufferGas(%d)", tt.in)
	}
}

func TestValidateRPCURL(t *testing.T) {
	for _, ok := range []string{"http://127.0.0.1:8545", "https://rpc.example.org", "ws://localhost:8546", "wss://node.example.org/ws"} {
		assert.NoError(t, ValidateRPCURL(ok), ok)
	}
	for _, bad := range []string{"", "127.0.0.1:8545", "ftp://example.org", "http://"} {
		assert.ErrorIs(t, ValidateRPCURL(bad), ErrInvalidRPCURL, bad)
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeNotFound, ErrorCode(NotFoundError{Kind: KindWallet, ID: "x"}))
	assert.Equal(t, CodeUnknownType, ErrorCode(ErrUnknownMessage))
	assert.Equal(t, CodeInvalidInput, ErrorCode(ErrInvalidABI))
	assert.Equal(t, CodeCallFailed, ErrorCode(assert.AnError))
	assert.Empty(t, ErrorCode(nil))
}
