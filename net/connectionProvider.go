package net

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"saleprobe/config"
)

type ConnectionProvider interface {
	GetWebSocketConnection() *Connection[*ethclient.Client]
	GetRPCConnection() *Connection[*rpc.Client]
	Close()
}

type connectionProvider struct {
	WSPool  *ConnectionPool[*ethclient.Client]
	RPCPool *ConnectionPool[*rpc.Client]
}

func NewConnectionProvider(wsp *ConnectionPool[*ethclient.Client], rpcPool *ConnectionPool[*rpc.Client]) ConnectionProvider {
	return &connectionProvider{WSPool: wsp, RPCPool: rpcPool}
}

// Dial builds both pools from the node configuration. An empty url list
// borrows the other one, so a single websocket or http endpoint is enough.
// Subscriptions still need a websocket url.
func Dial(ctx context.Context, cfg config.NodeConfig) (ConnectionProvider, error) {
	wsCfg, rpcCfg := cfg.WS, cfg.RPC
	if len(wsCfg.URLs) == 0 {
		wsCfg.URLs = cfg.RPC.URLs
	}
	if len(rpcCfg.URLs) == 0 {
		rpcCfg.URLs = cfg.WS.URLs
	}
	wsPool, err := NewConnectionPool[*ethclient.Client](ctx, wsCfg)
	if err != nil {
		return nil, err
	}
	rpcPool, err := NewConnectionPool[*rpc.Client](ctx, rpcCfg)
	if err != nil {
		wsPool.Close()
		return nil, err
	}
	return NewConnectionProvider(wsPool, rpcPool), nil
}

// RequestClient wraps a pooled rpc connection for plain request/response
// calls. The pool owns the connection, the returned client must not be
// closed.
func RequestClient(cp ConnectionProvider) *ethclient.Client {
	return ethclient.NewClient(cp.GetRPCConnection().Client)
}

func (cp *connectionProvider) GetWebSocketConnection() *Connection[*ethclient.Client] {
	return cp.WSPool.Get()
}

func (cp *connectionProvider) GetRPCConnection() *Connection[*rpc.Client] {
	return cp.RPCPool.Get()
}

func (cp *connectionProvider) Close() {
	cp.WSPool.Close()
	cp.RPCPool.Close()
}
