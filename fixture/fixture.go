package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"saleprobe/config"
	"saleprobe/interfaces"
)

var ErrBadAllocation = errors.New("token allocations exceed max supply")

// Contracts are the deployed token sale contracts.
type Contracts struct {
	Token      interfaces.Contract
	Trustee    interfaces.Contract
	Sale       interfaces.Contract
	Allocation Allocation
}

// Allocation is the split of the token supply read from the sale contract.
// Trustee is what remains after the sale and future allocations.
type Allocation struct {
	Max     *big.Int
	Sale    *big.Int
	Future  *big.Int
	Trustee *big.Int
}

type Option func(*Fixture)

// WithClock replaces the clock that supplies the mock sale's start time.
func WithClock(now func() time.Time) Option {
	return func(f *Fixture) {
		f.now = now
	}
}

type Fixture struct {
	cfg       config.FixtureConfig
	deployer  interfaces.Deployer
	artifacts interfaces.ArtifactSource
	now       func() time.Time
}

func New(cfg config.FixtureConfig, deployer interfaces.Deployer, artifacts interfaces.ArtifactSource, opts ...Option) *Fixture {
	f := &Fixture{
		cfg:       cfg,
		deployer:  deployer,
		artifacts: artifacts,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fixture) deploy(ctx context.Context, name string, gas uint64, args ...interface{}) (interfaces.Contract, error) {
	artifact, err := f.artifacts.Artifact(name)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}
	c, err := f.deployer.Deploy(ctx, artifact, gas, args...)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", name, err)
	}
	slog.Info("fixture contract deployed", "name", name, "address", c.Address().Hex())
	return c, nil
}

// DeployTrustee deploys the token and a trustee holding it.
func (f *Fixture) DeployTrustee(ctx context.Context) (*Contracts, error) {
	token, err := f.deploy(ctx, f.cfg.TokenArtifact, f.cfg.TokenGas)
	if err != nil {
		return nil, err
	}
	trustee, err := f.deploy(ctx, f.cfg.TrusteeArtifact, f.cfg.TrusteeGas, token.Address())
	if err != nil {
		return nil, err
	}
	return &Contracts{Token: token, Trustee: trustee}, nil
}

// DeployContracts deploys the token, the trustee and the mock sale, hands
// the operations role of the first two to the sale, funds the sale and the
// trustee and initializes the sale.
func (f *Fixture) DeployContracts(ctx context.Context) (*Contracts, error) {
	contracts, err := f.DeployTrustee(ctx)
	if err != nil {
		return nil, err
	}
	token, trustee := contracts.Token, contracts.Trustee

	owner := f.deployer.From()
	startTime := big.NewInt(f.now().Unix())
	sale, err := f.deploy(ctx, f.cfg.SaleArtifact, f.cfg.SaleGas, token.Address(), trustee.Address(), owner, startTime)
	if err != nil {
		return nil, err
	}
	contracts.Sale = sale

	for _, c := range []interfaces.Contract{token, trustee} {
		if _, err := c.Transact(ctx, "setOperationsAddress", sale.Address()); err != nil {
			return nil, fmt.Errorf("set operations address of %s: %w", c.Name(), err)
		}
	}

	allocation, err := readAllocation(ctx, sale)
	if err != nil {
		return nil, err
	}
	contracts.Allocation = allocation

	if _, err := token.Transact(ctx, "transfer", sale.Address(), allocation.Sale); err != nil {
		return nil, fmt.Errorf("fund sale: %w", err)
	}
	if _, err := token.Transact(ctx, "transfer", trustee.Address(), allocation.Trustee); err != nil {
		return nil, fmt.Errorf("fund trustee: %w", err)
	}
	if _, err := sale.Transact(ctx, "initialize"); err != nil {
		return nil, fmt.Errorf("initialize sale: %w", err)
	}

	slog.Info("token sale fixture ready",
		"token", token.Address().Hex(),
		"trustee", trustee.Address().Hex(),
		"sale", sale.Address().Hex(),
		"saleTokens", allocation.Sale,
		"trusteeTokens", allocation.Trustee)
	return contracts, nil
}

func readAllocation(ctx context.Context, sale interfaces.Contract) (Allocation, error) {
	var a Allocation
	for _, read := range []struct {
		method string
		dst    **big.Int
	}{
		{"TOKENS_MAX", &a.Max},
		{"TOKENS_SALE", &a.Sale},
		{"TOKENS_FUTURE", &a.Future},
	} {
		v, err := callBig(ctx, sale, read.method)
		if err != nil {
			return Allocation{}, err
		}
		*read.dst = v
	}

	a.Trustee = new(big.Int).Sub(a.Max, a.Sale)
	a.Trustee.Sub(a.Trustee, a.Future)
	if a.Trustee.Sign() < 0 {
		return Allocation{}, fmt.Errorf("%w: max %s, sale %s, future %s", ErrBadAllocation, a.Max, a.Sale, a.Future)
	}
	return a, nil
}

func callBig(ctx context.Context, c interfaces.Contract, method string) (*big.Int, error) {
	out, err := c.Call(ctx, method)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("read %s: expected one output, got %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("read %s: unexpected output type %T", method, out[0])
	}
	return v, nil
}

// ChangeTime moves the clock of a mock sale.
func ChangeTime(ctx context.Context, sale interfaces.Contract, t time.Time) error {
	if _, err := sale.Transact(ctx, "changeTime", big.NewInt(t.Unix())); err != nil {
		return fmt.Errorf("change time of %s: %w", sale.Name(), err)
	}
	return nil
}
