package contract

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"saleprobe/interfaces"
	"saleprobe/model"
	"saleprobe/schema"
)

var (
	ErrTxFailed      = errors.New("transaction failed")
	ErrNotDeployable = errors.New("artifact has no bytecode")
)

// Backend is the part of a node, or of a simulated chain, needed to deploy
// and call contracts.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

type Option func(*Client)

// WithCommit registers a function called after every transaction is sent.
// Simulated backends need it to mine a block.
func WithCommit(commit func()) Option {
	return func(c *Client) {
		c.commit = commit
	}
}

// Client deploys and drives contracts from a single account.
type Client struct {
	backend Backend
	key     *ecdsa.PrivateKey
	chainID *big.Int
	from    common.Address
	commit  func()
}

var _ interfaces.Deployer = (*Client)(nil)

func NewClient(backend Backend, key *ecdsa.PrivateKey, chainID *big.Int, opts ...Option) *Client {
	c := &Client{
		backend: backend,
		key:     key,
		chainID: chainID,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) From() common.Address {
	return c.from
}

func (c *Client) transactOpts(ctx context.Context, gasLimit uint64, value *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	opts.GasLimit = gasLimit
	opts.Value = value
	return opts, nil
}

func (c *Client) mine() {
	if c.commit != nil {
		c.commit()
	}
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	c.mine()
	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for transaction %s: %w", tx.Hash().Hex(), err)
	}
	return receipt, nil
}

// Deploy sends the creation transaction of artifact and waits until it is
// mined. A zero gasLimit lets the node estimate it.
func (c *Client) Deploy(ctx context.Context, artifact *model.Artifact, gasLimit uint64, args ...interface{}) (interfaces.Contract, error) {
	if !artifact.Deployable() {
		return nil, fmt.Errorf("deploy %s: %w", artifact.ContractName, ErrNotDeployable)
	}
	opts, err := c.transactOpts(ctx, gasLimit, nil)
	if err != nil {
		return nil, err
	}
	address, tx, bound, err := bind.DeployContract(opts, artifact.ABI, artifact.Bytecode, c.backend, args...)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", artifact.ContractName, err)
	}
	receipt, err := c.waitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", artifact.ContractName, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("deploy %s: %w", artifact.ContractName, ErrTxFailed)
	}
	slog.Debug("contract deployed",
		"name", artifact.ContractName,
		"address", address.Hex(),
		"gasUsed", receipt.GasUsed)
	return c.newBoundContract(artifact, address, bound), nil
}

// At binds an already deployed contract.
func (c *Client) At(artifact *model.Artifact, address common.Address) interfaces.Contract {
	bound := bind.NewBoundContract(address, artifact.ABI, c.backend, c.backend, c.backend)
	return c.newBoundContract(artifact, address, bound)
}

func (c *Client) newBoundContract(artifact *model.Artifact, address common.Address, bound *bind.BoundContract) *boundContract {
	return &boundContract{
		client:  c,
		name:    artifact.ContractName,
		address: address,
		bound:   bound,
		decoder: schema.NewDecoder(artifact.ABI),
	}
}
