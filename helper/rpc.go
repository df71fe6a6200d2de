package helper

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type GasPricer interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// GetBalance returns the latest balance of address in wei.
func GetBalance(ctx context.Context, client BalanceReader, address common.Address) (*big.Int, error) {
	return client.BalanceAt(ctx, address, nil)
}

func GetGasPrice(ctx context.Context, client GasPricer) (*big.Int, error) {
	return client.SuggestGasPrice(ctx)
}
