package net

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saleprobe/config"
)

// http endpoints are dialed lazily, so no node has to listen on them.
var nodeURLs = []string{"http://127.0.0.1:8545", "http://127.0.0.1:8546"}

func TestConnectionPool(t *testing.T) {
	ctx := context.Background()
	pool, err := NewConnectionPool[*ethclient.Client](ctx, config.ConnectionConfig{URLs: nodeURLs, MaxConnections: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, pool.Len())

	con := pool.Get()
	require.NotNil(t, con)
	assert.Contains(t, nodeURLs, con.URL)
	assert.NotNil(t, con.Client)

	pool.Close()
	assert.Equal(t, 0, pool.Len())
	assert.Nil(t, pool.Get())
}

func TestConnectionPool_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewConnectionPool[*rpc.Client](ctx, config.ConnectionConfig{MaxConnections: 2})
	assert.ErrorIs(t, err, ErrNoConnection)

	_, err = NewConnectionPool[*rpc.Client](ctx, config.ConnectionConfig{URLs: []string{"unknown://node"}, MaxConnections: 2})
	assert.ErrorIs(t, err, ErrNoConnection)
}

func TestDial(t *testing.T) {
	cp, err := Dial(context.Background(), config.NodeConfig{
		RPC: config.ConnectionConfig{URLs: nodeURLs[:1], MaxConnections: 1},
	})
	require.NoError(t, err)
	defer cp.Close()

	assert.Equal(t, nodeURLs[0], cp.GetWebSocketConnection().URL)
	assert.Equal(t, nodeURLs[0], cp.GetRPCConnection().URL)
}

func TestDial_WebSocketOnly(t *testing.T) {
	cp, err := Dial(context.Background(), config.NodeConfig{
		WS: config.ConnectionConfig{URLs: nodeURLs[1:], MaxConnections: 1},
	})
	require.NoError(t, err)
	defer cp.Close()

	assert.Equal(t, nodeURLs[1], cp.GetWebSocketConnection().URL)
	assert.Equal(t, nodeURLs[1], cp.GetRPCConnection().URL)
}

type gasService struct{}

func (s *gasService) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(7_000_000_000))
}

func TestRequestClient(t *testing.T) {
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", new(gasService)))
	defer server.Stop()
	node := httptest.NewServer(server)
	defer node.Close()

	cp, err := Dial(context.Background(), config.NodeConfig{
		RPC: config.ConnectionConfig{URLs: []string{node.URL}, MaxConnections: 1},
		WS:  config.ConnectionConfig{URLs: nodeURLs[:1], MaxConnections: 1},
	})
	require.NoError(t, err)
	defer cp.Close()

	price, err := RequestClient(cp).SuggestGasPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "7000000000", price.String())
}
