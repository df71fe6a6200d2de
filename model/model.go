package model

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Artifact is a compiled contract as produced by truffle, or a bare abi
// file in which case Bytecode is empty.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
	Source       string
}

func (a *Artifact) Deployable() bool {
	return len(a.Bytecode) > 0
}

// DecodedLog is a receipt log matched against the known abi events. Event is
// empty when no event matched, in which case Args is nil and only Raw is set.
type DecodedLog struct {
	Event string                 `json:"event"`
	Args  map[string]interface{} `json:"args,omitempty"`
	Raw   types.Log              `json:"raw"`
}

func (l DecodedLog) Decoded() bool {
	return l.Event != ""
}

// TxResult is the outcome of a mined transaction. Logs holds the logs the
// called contract emitted, decoded with its own abi; the receipt keeps every
// raw log of the transaction.
type TxResult struct {
	TxHash  common.Hash
	Receipt *types.Receipt
	Logs    []DecodedLog
}

// RawLogs returns the receipt logs, nil safe.
func (r *TxResult) RawLogs() []*types.Log {
	if r == nil || r.Receipt == nil {
		return nil
	}
	return r.Receipt.Logs
}
