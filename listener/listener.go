package listener

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	lru "github.com/hashicorp/golang-lru/v2"

	"saleprobe/config"
	"saleprobe/interfaces"
)

const headerCacheSize = 1024

// Listener follows the logs of the watched contracts. It reads the history
// from the configured block up to the head in batches, then follows new logs
// through a subscription. Every log is decoded, logged and recorded.
type Listener struct {
	cfg       config.WatchConfig
	client    interfaces.EthClient
	abiParser interfaces.ABIParser
	dbHandler interfaces.DatabaseHandler
	addresses []common.Address

	newEvents  chan types.Log
	blockTimes *lru.Cache[uint64, uint64]

	cancel context.CancelFunc
	sync.WaitGroup
}

var _ interfaces.Listener = (*Listener)(nil)

// NewListener returns a listener over client. dbHandler may be nil, in which
// case events are only logged.
func NewListener(cfg config.WatchConfig, client interfaces.EthClient, parser interfaces.ABIParser, dbHandler interfaces.DatabaseHandler) (*Listener, error) {
	addresses := make([]common.Address, 0, len(cfg.Addresses))
	for _, a := range cfg.Addresses {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid contract address %q", a)
		}
		addresses = append(addresses, common.HexToAddress(a))
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.Default().Watch.BatchSize
	}
	if cfg.Processors < 1 {
		cfg.Processors = 1
	}
	blockTimes, err := lru.New[uint64, uint64](headerCacheSize)
	if err != nil {
		return nil, err
	}
	return &Listener{
		cfg:        cfg,
		client:     client,
		abiParser:  parser,
		dbHandler:  dbHandler,
		addresses:  addresses,
		newEvents:  make(chan types.Log, cfg.Processors),
		blockTimes: blockTimes,
	}, nil
}

// Start subscribes to new logs, then starts the processors and the history
// reader. It returns once everything runs; Stop ends it.
func (l *Listener) Start(ctx context.Context) error {
	head, err := l.client.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("unable to get the latest block number: %w", err)
	}
	ctx, l.cancel = context.WithCancel(ctx)

	fq := ethereum.FilterQuery{FromBlock: new(big.Int).SetUint64(head + 1), Addresses: l.addresses}
	sub, err := l.client.SubscribeFilterLogs(ctx, fq, l.newEvents)
	if err != nil {
		l.cancel()
		return fmt.Errorf("unable to subscribe to logs: %w", err)
	}
	slog.Info("subscribed to log events", "from", head+1, "contracts", len(l.addresses))

	for i := 0; i < l.cfg.Processors; i++ {
		l.runInGoroutine(ctx, NewEventProcessor(l).Process)
	}
	l.runInGoroutine(ctx, func(ctx context.Context) {
		defer sub.Unsubscribe()
		select {
		case err := <-sub.Err():
			if err != nil {
				slog.Error("log subscription failed", "error", err)
			}
		case <-ctx.Done():
		}
	})
	if l.cfg.FromBlock <= head {
		l.runInGoroutine(ctx, func(ctx context.Context) {
			l.ReadEventHistory(ctx, l.cfg.FromBlock, head)
		})
	}
	return nil
}

func (l *Listener) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.Wait()
	if l.dbHandler != nil {
		l.dbHandler.Flush()
	}
}

func (l *Listener) runInGoroutine(ctx context.Context, fn func(ctx context.Context)) {
	l.Add(1)
	go func() {
		defer l.Done()
		fn(ctx)
	}()
}

// ReadEventHistory filters the logs of [start, end] in batches of the
// configured size and queues them for the processors. A failed batch is
// logged and skipped.
func (l *Listener) ReadEventHistory(ctx context.Context, start, end uint64) {
	slog.Info("Reading event history", "from", start, "to", end)
	for from := start; from <= end; from += l.cfg.BatchSize {
		to := min(from+l.cfg.BatchSize-1, end)
		fq := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
			Addresses: l.addresses,
		}
		logs, err := l.client.FilterLogs(ctx, fq)
		if err != nil {
			slog.Error("Unable to filter logs", "error", err, "batch start", from, "batch end", to)
			continue
		}
		for _, log := range logs {
			select {
			case <-ctx.Done():
				return
			case l.newEvents <- log:
			}
		}
		slog.Debug("event batch complete", "startBlock", from, "endBlock", to, "logs", len(logs))
		if to == end {
			break
		}
	}
	slog.Info("finished reading event history")
}

// blockTime returns the timestamp of block number, from the cache when the
// header was fetched before.
func (l *Listener) blockTime(ctx context.Context, number uint64) (time.Time, error) {
	if ts, ok := l.blockTimes.Get(number); ok {
		return time.Unix(int64(ts), 0), nil
	}
	header, err := l.client.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return time.Time{}, err
	}
	l.blockTimes.Add(number, header.Time)
	return time.Unix(int64(header.Time), 0), nil
}
