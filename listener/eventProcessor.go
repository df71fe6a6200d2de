package listener

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/core/types"

	"saleprobe/interfaces"
)

type eventProcessor struct {
	listener *Listener
}

func NewEventProcessor(listener *Listener) interfaces.Processor {
	return &eventProcessor{listener: listener}
}

func (ep *eventProcessor) Process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ep.listener.newEvents:
			if !ok {
				return
			}
			ep.handle(ctx, event)
		}
	}
}

func (ep *eventProcessor) handle(ctx context.Context, event types.Log) {
	if event.Removed {
		slog.Debug("skipping removed log", "tx", event.TxHash, "block", event.BlockNumber)
		return
	}
	decoded, err := ep.listener.abiParser.Decode(event)
	if err != nil {
		slog.Error("new event decode", "error", err)
		return
	}
	if !decoded.Decoded() {
		slog.Warn("Unknown event received", "contract", event.Address, "tx", event.TxHash)
		return
	}

	ts, err := ep.listener.blockTime(ctx, event.BlockNumber)
	if err != nil {
		slog.Error("couldn't fetch block", "number", event.BlockNumber, "error", err)
		return
	}

	attrs := make([]any, 0, 8+2*len(decoded.Args))
	attrs = append(attrs, "name", decoded.Event, "block", event.BlockNumber, "contract", event.Address, "tx", event.TxHash)
	for name, v := range decoded.Args {
		attrs = append(attrs, name, v)
	}
	slog.Info("new log event received", attrs...)

	if ep.listener.dbHandler != nil {
		ep.listener.dbHandler.WriteEvent(decoded, ts)
	}
}
