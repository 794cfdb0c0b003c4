package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// Unit is a denomination of the native currency
type Unit string

const (
	Wei   Unit = "wei"
	Gwei  Unit = "gwei"
	Ether Unit = "ether"
)

// Decimals returns the power of ten a unit is worth in wei
func (u Unit) Decimals() (int64, error) {
	switch strings.ToLower(string(u)) {
	case "", string(Wei):
		return 0, nil
	case string(Gwei):
		return 9, nil
	case string(Ether):
		return 18, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidAmount, u)
	}
}

// ToBaseUnits converts a decimal amount in unit into wei using integer arithmetic only
func ToBaseUnits(amount string, unit Unit) (*big.Int, error) {
	decimals, err := unit.Decimals()
	if err != nil {
		return nil, err
	}

	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if strings.HasPrefix(amount, "-") {
		return nil, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if int64(len(frac)) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, decimals)
	}
	frac += strings.Repeat("0", int(decimals)-len(frac))

	digits := strings.TrimLeft(whole+frac, "+")
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	return value, nil
}

var (
	gasBufferNum = big.NewInt(12)
	gasBufferDen = big.NewInt(10)
)

// BufferGas adds a 20% margin to a gas estimate: floor(g * 12 / 10)
func BufferGas(g *big.Int) *big.Int {
	out := new(big.Int).Mul(g, gasBufferNum)
	return out.Quo(out, gasBufferDen)
}
