package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"saleprobe/model"
)

type Contract interface {
	Name() string
	Address() common.Address
	Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error)
	Transact(ctx context.Context, method string, args ...interface{}) (*model.TxResult, error)
	TransactWithValue(ctx context.Context, value *big.Int, method string, args ...interface{}) (*model.TxResult, error)
}

type Deployer interface {
	From() common.Address
	Deploy(ctx context.Context, artifact *model.Artifact, gasLimit uint64, args ...interface{}) (Contract, error)
}
