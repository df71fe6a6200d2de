package helper

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
)

var (
	ErrZeroRate     = errors.New("token rate is zero")
	ErrNotANumber   = errors.New("value is not a number")
	tokensRateDenom = big.NewInt(1000)
)

// CalculateTokensFromWei returns wei * tokensPerKEther / 1000, truncated.
func CalculateTokensFromWei(tokensPerKEther, weiAmount *big.Int) *big.Int {
	tokens := new(big.Int).Mul(weiAmount, tokensPerKEther)
	return tokens.Quo(tokens, tokensRateDenom)
}

// CalculateCostFromTokens returns tokens * 1000 / tokensPerKEther, truncated,
// so converting the cost back to tokens never yields more than tokenAmount.
func CalculateCostFromTokens(tokensPerKEther, tokenAmount *big.Int) (*big.Int, error) {
	if tokensPerKEther.Sign() == 0 {
		return nil, ErrZeroRate
	}
	cost := new(big.Int).Mul(tokenAmount, tokensRateDenom)
	return cost.Quo(cost, tokensPerKEther), nil
}

// ToBig normalizes the numeric representations used in expectations and
// decoded event fields to a big.Int.
func ToBig(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("%w: nil *big.Int", ErrNotANumber)
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case string:
		b, ok := math.ParseBig256(strings.TrimSpace(n))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotANumber, n)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotANumber, v)
}
