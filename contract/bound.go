package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"saleprobe/interfaces"
	"saleprobe/model"
	"saleprobe/schema"
)

type boundContract struct {
	client  *Client
	name    string
	address common.Address
	bound   *bind.BoundContract
	decoder *schema.Decoder
}

var _ interfaces.Contract = (*boundContract)(nil)

func (b *boundContract) Name() string {
	return b.name
}

func (b *boundContract) Address() common.Address {
	return b.address
}

func (b *boundContract) Call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: b.client.from}
	if err := b.bound.Call(opts, &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", b.name, method, err)
	}
	return out, nil
}

func (b *boundContract) Transact(ctx context.Context, method string, args ...interface{}) (*model.TxResult, error) {
	return b.TransactWithValue(ctx, nil, method, args...)
}

// TransactWithValue sends a transaction carrying value wei. An empty method
// sends a plain transfer to the contract's fallback.
func (b *boundContract) TransactWithValue(ctx context.Context, value *big.Int, method string, args ...interface{}) (*model.TxResult, error) {
	opts, err := b.client.transactOpts(ctx, 0, value)
	if err != nil {
		return nil, err
	}
	var tx *types.Transaction
	if method == "" {
		tx, err = b.bound.Transfer(opts)
	} else {
		tx, err = b.bound.Transact(opts, method, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", b.name, method, err)
	}

	receipt, err := b.client.waitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", b.name, method, err)
	}
	result := &model.TxResult{TxHash: tx.Hash(), Receipt: receipt}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, fmt.Errorf("%s.%s: %w", b.name, method, ErrTxFailed)
	}
	result.Logs, err = b.ownLogs(receipt.Logs)
	if err != nil {
		return result, err
	}
	return result, nil
}

// ownLogs keeps the logs this contract emitted that its abi can decode.
func (b *boundContract) ownLogs(logs []*types.Log) ([]model.DecodedLog, error) {
	own := make([]*types.Log, 0, len(logs))
	for _, log := range logs {
		if log.Address == b.address {
			own = append(own, log)
		}
	}
	decoded, err := b.decoder.Decode(own)
	if err != nil {
		return nil, err
	}
	out := make([]model.DecodedLog, 0, len(decoded))
	for _, log := range decoded {
		if log.Decoded() {
			out = append(out, log)
		}
	}
	return out, nil
}
