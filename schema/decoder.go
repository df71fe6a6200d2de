package schema

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"saleprobe/model"
)

var ErrLogDecode = errors.New("could not decode receipt log")

// Decoder matches receipt logs against the events of one or more abis. The
// signature lookup table is built once, decoding never mutates it.
type Decoder struct {
	events map[common.Hash]abi.Event
}

func NewDecoder(abis ...abi.ABI) *Decoder {
	d := &Decoder{events: make(map[common.Hash]abi.Event)}
	for _, parsed := range abis {
		for _, event := range orderedEvents(parsed) {
			if event.Anonymous {
				continue
			}
			if _, ok := d.events[event.ID]; ok {
				// first registration wins
				continue
			}
			d.events[event.ID] = event
		}
	}
	return d
}

// orderedEvents returns the events of an abi grouped by raw name. The abi
// package keeps them in a map and renames overloads Name, Name0, Name1... in
// the order they were declared, so overloads are ordered by that numeric
// suffix and keep their declaration order.
func orderedEvents(parsed abi.ABI) []abi.Event {
	events := make([]abi.Event, 0, len(parsed.Events))
	for _, event := range parsed.Events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].RawName != events[j].RawName {
			return events[i].RawName < events[j].RawName
		}
		return overloadIndex(events[i]) < overloadIndex(events[j])
	})
	return events
}

// overloadIndex is -1 for the first declaration of a name and n for the
// overload renamed Name<n>.
func overloadIndex(event abi.Event) int {
	suffix := strings.TrimPrefix(event.Name, event.RawName)
	if suffix == "" {
		return -1
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return -1
	}
	return n
}

func (d *Decoder) Len() int {
	return len(d.events)
}

// Event looks up the event whose signature hash is topic.
func (d *Decoder) Event(topic common.Hash) (abi.Event, bool) {
	ev, ok := d.events[topic]
	return ev, ok
}

// Decode decodes logs in order. Logs that match no known event are returned
// as is. With no events to match against it returns nil straight away.
func (d *Decoder) Decode(logs []*types.Log) ([]model.DecodedLog, error) {
	if len(d.events) == 0 {
		return nil, nil
	}
	decoded := make([]model.DecodedLog, 0, len(logs))
	for _, log := range logs {
		dl, err := d.DecodeLog(log)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, dl)
	}
	return decoded, nil
}

func (d *Decoder) DecodeLog(log *types.Log) (model.DecodedLog, error) {
	if log == nil {
		return model.DecodedLog{}, fmt.Errorf("%w: nil log", ErrLogDecode)
	}
	if len(log.Topics) == 0 {
		return model.DecodedLog{Raw: *log}, nil
	}
	event, ok := d.events[log.Topics[0]]
	if !ok {
		slog.Debug("no abi event for log", "topic-0", log.Topics[0], "address", log.Address)
		return model.DecodedLog{Raw: *log}, nil
	}

	args, err := unpackEvent(event, log)
	if err != nil {
		return model.DecodedLog{}, fmt.Errorf("%w for transaction %s: %w", ErrLogDecode, log.TxHash.Hex(), err)
	}
	// overloads are renamed Name0, Name1... by the abi package
	return model.DecodedLog{Event: event.RawName, Args: args, Raw: *log}, nil
}

func unpackEvent(event abi.Event, log *types.Log) (map[string]interface{}, error) {
	args := make(map[string]interface{}, len(event.Inputs))
	indexed := make(abi.Arguments, 0)
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) > 0 {
		if len(log.Topics)-1 != len(indexed) {
			return nil, fmt.Errorf("event %s expects %d indexed topics, log has %d", event.Sig, len(indexed), len(log.Topics)-1)
		}
		if err := abi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
			return nil, err
		}
	}
	if err := event.Inputs.UnpackIntoMap(args, log.Data); err != nil {
		return nil, err
	}

	for _, input := range event.Inputs {
		if input.Type.T != abi.FixedBytesTy || input.Type.Size != 32 {
			continue
		}
		if raw, ok := args[input.Name].([32]byte); ok {
			args[input.Name] = Bytes32ToText(raw)
		}
	}
	return args, nil
}

// Bytes32ToText strips the zero padding at the end of b and maps every
// remaining byte to one character. Zero bytes before the last non zero byte
// are kept.
func Bytes32ToText(b [32]byte) string {
	trimmed := bytes.TrimRight(b[:], "\x00")
	var sb strings.Builder
	sb.Grow(len(trimmed))
	for _, c := range trimmed {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// TopicFromHex parses a topic hash with or without the 0x prefix.
func TopicFromHex(s string) (common.Hash, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid topic length %d", len(s))
	}
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid topic %q", s)
	}
	return common.BytesToHash(b), nil
}
