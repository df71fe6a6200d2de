package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"saleprobe/config"
)

var ErrNoConnection = errors.New("no node connection available")

type clientType interface {
	*ethclient.Client | *rpc.Client
}

type Connection[T clientType] struct {
	Client T
	URL    string
}

// ConnectionPool holds a fixed number of connections spread over the
// configured node urls and hands them out at random.
type ConnectionPool[T clientType] struct {
	urls        []string
	connections []*Connection[T]
	sync.RWMutex
}

func (cp *ConnectionPool[T]) newConnection(ctx context.Context) (*Connection[T], error) {
	url := cp.urls[rand.Intn(len(cp.urls))]
	var client T
	switch any(client).(type) {
	case *ethclient.Client:
		ethClient, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		client = any(ethClient).(T)
	case *rpc.Client:
		rpcClient, err := rpc.DialContext(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", url, err)
		}
		client = any(rpcClient).(T)
	}

	cp.Lock()
	defer cp.Unlock()
	con := &Connection[T]{Client: client, URL: url}
	cp.connections = append(cp.connections, con)
	return con, nil
}

// NewConnectionPool dials cfg.MaxConnections connections. Failed dials are
// logged; the pool is usable as long as one of them succeeded.
func NewConnectionPool[T clientType](ctx context.Context, cfg config.ConnectionConfig) (*ConnectionPool[T], error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("%w: no urls configured", ErrNoConnection)
	}
	capacity := cfg.MaxConnections
	if capacity < 1 {
		capacity = 1
	}
	cp := &ConnectionPool[T]{
		urls:        cfg.URLs,
		connections: make([]*Connection[T], 0, capacity),
	}
	for i := 0; i < capacity; i++ {
		if _, err := cp.newConnection(ctx); err != nil {
			slog.Error("dial error", "error", err)
		}
	}
	if cp.Len() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoConnection, cfg.URLs)
	}
	return cp, nil
}

func (cp *ConnectionPool[T]) Len() int {
	cp.RLock()
	defer cp.RUnlock()
	return len(cp.connections)
}

func (cp *ConnectionPool[T]) Get() *Connection[T] {
	cp.RLock()
	defer cp.RUnlock()

	if len(cp.connections) == 0 {
		return nil
	}
	return cp.connections[rand.Intn(len(cp.connections))]
}

// Close closes every pooled connection and empties the pool.
func (cp *ConnectionPool[T]) Close() {
	cp.Lock()
	defer cp.Unlock()
	for _, c := range cp.connections {
		switch cl := any(c.Client).(type) {
		case *rpc.Client:
			cl.Close()
		case *ethclient.Client:
			cl.Close()
		}
	}
	cp.connections = nil
}
