package fixture

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"saleprobe/config"
	"saleprobe/mocks"
	"saleprobe/model"
	"saleprobe/schema"
)

var (
	owner          = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	tokenAddress   = common.HexToAddress("0x0000000000000000000000000000000000000701")
	trusteeAddress = common.HexToAddress("0x0000000000000000000000000000000000000702")
	saleAddress    = common.HexToAddress("0x0000000000000000000000000000000000000703")
	startTime      = time.Date(2017, 10, 1, 12, 0, 0, 0, time.UTC)
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type env struct {
	ctrl     *gomock.Controller
	deployer *mocks.MockDeployer
	token    *mocks.MockContract
	trustee  *mocks.MockContract
	sale     *mocks.MockContract
	fixture  *Fixture
	registry *schema.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctrl := gomock.NewController(t)
	registry := schema.NewRegistry(config.ArtifactsConfig{Dir: "../schema/testdata"})
	require.NoError(t, registry.LoadArtifacts())

	e := &env{
		ctrl:     ctrl,
		deployer: mocks.NewMockDeployer(ctrl),
		token:    mocks.NewMockContract(ctrl),
		trustee:  mocks.NewMockContract(ctrl),
		sale:     mocks.NewMockContract(ctrl),
		registry: registry,
	}
	e.token.EXPECT().Address().Return(tokenAddress).AnyTimes()
	e.token.EXPECT().Name().Return("SimpleToken").AnyTimes()
	e.trustee.EXPECT().Address().Return(trusteeAddress).AnyTimes()
	e.trustee.EXPECT().Name().Return("Trustee").AnyTimes()
	e.sale.EXPECT().Address().Return(saleAddress).AnyTimes()
	e.sale.EXPECT().Name().Return("TokenSaleMock").AnyTimes()
	e.deployer.EXPECT().From().Return(owner).AnyTimes()

	e.fixture = New(config.DefaultFixture(), e.deployer, registry, WithClock(func() time.Time { return startTime }))
	return e
}

func (e *env) artifact(t *testing.T, name string) *model.Artifact {
	t.Helper()
	a, err := e.registry.Artifact(name)
	require.NoError(t, err)
	return a
}

func (e *env) expectDeployTrustee(t *testing.T) {
	ctx := gomock.Any()
	gomock.InOrder(
		e.deployer.EXPECT().Deploy(ctx, e.artifact(t, "SimpleToken"), uint64(0)).Return(e.token, nil),
		e.deployer.EXPECT().Deploy(ctx, e.artifact(t, "Trustee"), uint64(3500000), tokenAddress).Return(e.trustee, nil),
	)
}

func TestDeployTrustee(t *testing.T) {
	e := newEnv(t)
	e.expectDeployTrustee(t)

	contracts, err := e.fixture.DeployTrustee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokenAddress, contracts.Token.Address())
	assert.Equal(t, trusteeAddress, contracts.Trustee.Address())
	assert.Nil(t, contracts.Sale)
}

func TestDeployContracts(t *testing.T) {
	e := newEnv(t)
	ctx := gomock.Any()
	maxSupply, sale, future := tokens(800_000_000), tokens(240_000_000), tokens(260_000_000)
	done := &model.TxResult{}

	e.expectDeployTrustee(t)
	gomock.InOrder(
		e.deployer.EXPECT().Deploy(ctx, e.artifact(t, "TokenSaleMock"), uint64(4500000),
			tokenAddress, trusteeAddress, owner, big.NewInt(startTime.Unix())).Return(e.sale, nil),
		e.token.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil),
		e.trustee.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil),
		e.sale.EXPECT().Call(ctx, "TOKENS_MAX").Return([]interface{}{maxSupply}, nil),
		e.sale.EXPECT().Call(ctx, "TOKENS_SALE").Return([]interface{}{sale}, nil),
		e.sale.EXPECT().Call(ctx, "TOKENS_FUTURE").Return([]interface{}{future}, nil),
		e.token.EXPECT().Transact(ctx, "transfer", saleAddress, sale).Return(done, nil),
		e.token.EXPECT().Transact(ctx, "transfer", trusteeAddress, tokens(300_000_000)).Return(done, nil),
		e.sale.EXPECT().Transact(ctx, "initialize").Return(done, nil),
	)

	contracts, err := e.fixture.DeployContracts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saleAddress, contracts.Sale.Address())

	a := contracts.Allocation
	assert.Equal(t, tokens(300_000_000).String(), a.Trustee.String())
	sum := new(big.Int).Add(a.Sale, a.Trustee)
	assert.Equal(t, new(big.Int).Sub(maxSupply, future).String(), sum.String())
	assert.Equal(t, maxSupply.String(), sum.Add(sum, a.Future).String())
}

// tokenLedger backs the token mock with balances so transfers made by the
// fixture can be read back with balanceOf.
type tokenLedger map[common.Address]*big.Int

func (l tokenLedger) balance(a common.Address) *big.Int {
	if b, ok := l[a]; ok {
		return b
	}
	return new(big.Int)
}

func (l tokenLedger) transfer(_ context.Context, _ string, args ...interface{}) (*model.TxResult, error) {
	to, amount := args[0].(common.Address), args[1].(*big.Int)
	if l.balance(owner).Cmp(amount) < 0 {
		return nil, errors.New("execution reverted")
	}
	l[owner] = new(big.Int).Sub(l.balance(owner), amount)
	l[to] = new(big.Int).Add(l.balance(to), amount)
	return &model.TxResult{}, nil
}

func (l tokenLedger) balanceOf(_ context.Context, _ string, args ...interface{}) ([]interface{}, error) {
	return []interface{}{new(big.Int).Set(l.balance(args[0].(common.Address)))}, nil
}

func TestDeployContracts_TokenBalances(t *testing.T) {
	e := newEnv(t)
	ctx := gomock.Any()
	maxSupply, sale, future := tokens(800_000_000), tokens(240_000_000), tokens(260_000_000)
	ledger := tokenLedger{owner: new(big.Int).Set(maxSupply)}

	e.expectDeployTrustee(t)
	e.deployer.EXPECT().Deploy(ctx, e.artifact(t, "TokenSaleMock"), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(e.sale, nil)
	e.token.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(&model.TxResult{}, nil)
	e.trustee.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(&model.TxResult{}, nil)
	e.sale.EXPECT().Call(ctx, "TOKENS_MAX").Return([]interface{}{maxSupply}, nil)
	e.sale.EXPECT().Call(ctx, "TOKENS_SALE").Return([]interface{}{sale}, nil)
	e.sale.EXPECT().Call(ctx, "TOKENS_FUTURE").Return([]interface{}{future}, nil)
	e.token.EXPECT().Transact(ctx, "transfer", gomock.Any(), gomock.Any()).Times(2).DoAndReturn(ledger.transfer)
	e.token.EXPECT().Call(ctx, "balanceOf", gomock.Any()).AnyTimes().DoAndReturn(ledger.balanceOf)
	e.sale.EXPECT().Transact(ctx, "initialize").Return(&model.TxResult{}, nil)

	contracts, err := e.fixture.DeployContracts(context.Background())
	require.NoError(t, err)

	balanceOf := func(a common.Address) *big.Int {
		out, err := contracts.Token.Call(context.Background(), "balanceOf", a)
		require.NoError(t, err)
		return out[0].(*big.Int)
	}
	funded := new(big.Int).Add(balanceOf(contracts.Sale.Address()), balanceOf(contracts.Trustee.Address()))
	assert.Equal(t, new(big.Int).Sub(maxSupply, future).String(), funded.String())
	assert.Equal(t, future.String(), balanceOf(owner).String())
	assert.Equal(t, sale.String(), balanceOf(saleAddress).String())
}

func TestDeployContracts_Errors(t *testing.T) {
	ctx := gomock.Any()
	done := &model.TxResult{}

	t.Run("deployment failure stops the fixture", func(t *testing.T) {
		e := newEnv(t)
		e.deployer.EXPECT().Deploy(ctx, gomock.Any(), gomock.Any()).Return(nil, errors.New("out of gas"))

		_, err := e.fixture.DeployContracts(context.Background())
		assert.EqualError(t, err, "deploy SimpleToken: out of gas")
	})

	t.Run("missing artifact", func(t *testing.T) {
		e := newEnv(t)
		cfg := config.DefaultFixture()
		cfg.SaleArtifact = "TokenSale"
		f := New(cfg, e.deployer, e.registry)
		e.expectDeployTrustee(t)

		_, err := f.DeployContracts(context.Background())
		assert.ErrorIs(t, err, schema.ErrArtifactNotFound)
	})

	t.Run("reverted operations address", func(t *testing.T) {
		e := newEnv(t)
		e.expectDeployTrustee(t)
		e.deployer.EXPECT().Deploy(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(e.sale, nil)
		e.token.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil)
		e.trustee.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(nil, errors.New("execution reverted"))

		_, err := e.fixture.DeployContracts(context.Background())
		assert.EqualError(t, err, "set operations address of Trustee: execution reverted")
	})

	t.Run("allocations over max supply", func(t *testing.T) {
		e := newEnv(t)
		e.expectDeployTrustee(t)
		e.deployer.EXPECT().Deploy(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(e.sale, nil)
		e.token.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil)
		e.trustee.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil)
		e.sale.EXPECT().Call(ctx, "TOKENS_MAX").Return([]interface{}{tokens(10)}, nil)
		e.sale.EXPECT().Call(ctx, "TOKENS_SALE").Return([]interface{}{tokens(6)}, nil)
		e.sale.EXPECT().Call(ctx, "TOKENS_FUTURE").Return([]interface{}{tokens(6)}, nil)

		_, err := e.fixture.DeployContracts(context.Background())
		assert.ErrorIs(t, err, ErrBadAllocation)
	})

	t.Run("unexpected call output", func(t *testing.T) {
		e := newEnv(t)
		e.expectDeployTrustee(t)
		e.deployer.EXPECT().Deploy(ctx, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(e.sale, nil)
		e.token.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil)
		e.trustee.EXPECT().Transact(ctx, "setOperationsAddress", saleAddress).Return(done, nil)
		e.sale.EXPECT().Call(ctx, "TOKENS_MAX").Return([]interface{}{"lots"}, nil)

		_, err := e.fixture.DeployContracts(context.Background())
		assert.EqualError(t, err, "read TOKENS_MAX: unexpected output type string")
	})
}

func TestChangeTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	sale := mocks.NewMockContract(ctrl)
	later := startTime.Add(7 * 24 * time.Hour)

	sale.EXPECT().Transact(gomock.Any(), "changeTime", big.NewInt(later.Unix())).Return(&model.TxResult{}, nil)
	assert.NoError(t, ChangeTime(context.Background(), sale, later))

	sale.EXPECT().Transact(gomock.Any(), "changeTime", gomock.Any()).Return(nil, errors.New("execution reverted"))
	sale.EXPECT().Name().Return("TokenSaleMock")
	assert.EqualError(t, ChangeTime(context.Background(), sale, later), "change time of TokenSaleMock: execution reverted")
}
