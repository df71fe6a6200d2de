package db

import (
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"saleprobe/config"
	"saleprobe/interfaces"
	"saleprobe/model"
)

type handler struct {
	cfg    config.InfluxDBConfig
	client influxdb2.Client
	writer api.WriteAPI
	done   chan struct{}
}

func NewHandler(dbConfig config.InfluxDBConfig) interfaces.DatabaseHandler {
	slog.Info("connecting to DB", "url", dbConfig.URL, "bucket", dbConfig.Bucket)
	h := &handler{cfg: dbConfig, done: make(chan struct{})}
	h.client = influxdb2.NewClient(dbConfig.URL, dbConfig.Token)
	h.writer = h.client.WriteAPI(dbConfig.Org, dbConfig.Bucket)
	go h.logErrors()
	return h
}

// logErrors drains the asynchronous write errors of the writer.
func (h *handler) logErrors() {
	errCh := h.writer.Errors()
	for {
		select {
		case <-h.done:
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}
			slog.Error("influx write failed", "error", err)
		}
	}
}

// WriteEvent records a decoded log as a point named after the event, tagged
// with the emitting contract and the transaction.
func (h *handler) WriteEvent(event model.DecodedLog, timeStamp time.Time) {
	if !event.Decoded() {
		return
	}
	point := influxdb2.NewPoint(event.Event, Tags(event), Fields(event), timeStamp)
	h.writer.WritePoint(point)
}

func (h *handler) Flush() {
	h.writer.Flush()
}

func (h *handler) Close() {
	h.writer.Flush()
	close(h.done)
	h.client.Close()
}

func Tags(event model.DecodedLog) map[string]string {
	return map[string]string{
		"contract": event.Raw.Address.Hex(),
		"tx":       event.Raw.TxHash.Hex(),
	}
}

// Event metadata is stored under names no abi argument can take, since
// argument names never contain a dot.
const (
	blockField    = "log.block"
	logIndexField = "log.index"
)

// Fields renders the event arguments as influx scalars. Every integer is
// stored as a decimal string so one field keeps a single type whatever the
// magnitude of its values.
func Fields(event model.DecodedLog) map[string]interface{} {
	fields := make(map[string]interface{}, len(event.Args)+2)
	for name, v := range event.Args {
		fields[name] = fieldValue(v)
	}
	fields[blockField] = event.Raw.BlockNumber
	fields[logIndexField] = uint64(event.Raw.Index)
	return fields
}

func fieldValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return ""
	case *big.Int:
		if x == nil {
			return ""
		}
		return x.String()
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case string, bool, float64:
		return x
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		return hexutil.Encode(b)
	}
	return fmt.Sprint(v)
}
