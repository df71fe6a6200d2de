package helper

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"saleprobe/mocks"
)

func assertBig(t *testing.T, want int64, got *big.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, big.NewInt(want).String(), got.String(), msgAndArgs...)
}

func TestCalculateTokensFromWei(t *testing.T) {
	assertBig(t, 5, CalculateTokensFromWei(big.NewInt(5), big.NewInt(1000)))
	assertBig(t, 1, CalculateTokensFromWei(big.NewInt(5), big.NewInt(399)), "division truncates")
	assertBig(t, 0, CalculateTokensFromWei(big.NewInt(5), big.NewInt(199)))
}

func TestCalculateCostFromTokens(t *testing.T) {
	cost, err := CalculateCostFromTokens(big.NewInt(5), big.NewInt(5))
	require.NoError(t, err)
	assertBig(t, 1000, cost)

	_, err = CalculateCostFromTokens(big.NewInt(0), big.NewInt(5))
	assert.ErrorIs(t, err, ErrZeroRate)
}

func TestCostTokensRoundTripTruncates(t *testing.T) {
	// 3 tokens per 1000 wei: a token costs 333.33 wei, the cost rounds down
	rate := big.NewInt(3)
	for _, tokens := range []int64{1, 2, 7, 1000, 123456789} {
		want := big.NewInt(tokens)
		cost, err := CalculateCostFromTokens(rate, want)
		require.NoError(t, err)
		back := CalculateTokensFromWei(rate, cost)
		assert.True(t, back.Cmp(want) <= 0, "tokens %d came back as %s", tokens, back)
	}

	cost, err := CalculateCostFromTokens(rate, big.NewInt(1))
	require.NoError(t, err)
	assertBig(t, 333, cost)
	assertBig(t, 0, CalculateTokensFromWei(rate, cost), "not an exact inverse")
}

func TestToBig(t *testing.T) {
	huge, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	tests := []struct {
		name string
		in   interface{}
		want *big.Int
	}{
		{"int", 100, big.NewInt(100)},
		{"negative int64", int64(-7), big.NewInt(-7)},
		{"uint8", uint8(3), big.NewInt(3)},
		{"uint64", uint64(1 << 63), new(big.Int).SetUint64(1 << 63)},
		{"pointer", huge, huge},
		{"value", *big.NewInt(42), big.NewInt(42)},
		{"decimal string", "1000000000000000000000000", huge},
		{"hex string", "0x64", big.NewInt(100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBig(tt.in)
			require.NoError(t, err)
			assert.Equal(t, 0, tt.want.Cmp(got), "want %s got %s", tt.want, got)
		})
	}

	t.Run("pointer is copied", func(t *testing.T) {
		in := big.NewInt(1)
		got, err := ToBig(in)
		require.NoError(t, err)
		got.SetInt64(2)
		assert.Equal(t, int64(1), in.Int64())
	})

	for _, bad := range []interface{}{"ten", 1.5, nil, (*big.Int)(nil), common.Address{}} {
		_, err := ToBig(bad)
		assert.ErrorIs(t, err, ErrNotANumber, "%v", bad)
	}
}

func TestRPCHelpers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockEthClient(ctrl)
	addr := common.HexToAddress("0x1234")
	ctx := context.Background()

	t.Run("balance", func(t *testing.T) {
		client.EXPECT().BalanceAt(gomock.Any(), addr, nil).Return(big.NewInt(7), nil).Times(1)
		balance, err := GetBalance(ctx, client, addr)
		require.NoError(t, err)
		assertBig(t, 7, balance)
	})

	t.Run("balance error is returned", func(t *testing.T) {
		client.EXPECT().BalanceAt(gomock.Any(), addr, nil).Return(nil, errors.New("connection refused")).Times(1)
		balance, err := GetBalance(ctx, client, addr)
		assert.EqualError(t, err, "connection refused")
		assert.Nil(t, balance)
	})

	t.Run("gas price", func(t *testing.T) {
		client.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1e9), nil).Times(1)
		price, err := GetGasPrice(ctx, client)
		require.NoError(t, err)
		assertBig(t, 1e9, price)
	})
}

func TestRPCHelpers_SimulatedBackend(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)
	funds := big.NewInt(1e18)

	backend := simulated.NewBackend(types.GenesisAlloc{addr: {Balance: funds}})
	defer backend.Close()

	balance, err := GetBalance(context.Background(), backend.Client(), addr)
	require.NoError(t, err)
	assert.Equal(t, funds.String(), balance.String())

	price, err := GetGasPrice(context.Background(), backend.Client())
	require.NoError(t, err)
	assert.Equal(t, 1, price.Sign())
}
