package cli

import (
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/olekukonko/tablewriter"

	"saleprobe/model"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}

// renderLogs prints one row per log. Logs no artifact could decode show
// their first topic in place of the event name.
func renderLogs(w io.Writer, logs []model.DecodedLog) {
	table := newTable(w, "#", "Contract", "Event", "Args")
	for _, log := range logs {
		name := log.Event
		if !log.Decoded() {
			name = "unknown"
			if len(log.Raw.Topics) > 0 {
				name += " " + log.Raw.Topics[0].Hex()
			}
		}
		table.Append([]string{
			strconv.FormatUint(uint64(log.Raw.Index), 10),
			log.Raw.Address.Hex(),
			name,
			formatArgs(log.Args),
		})
	}
	table.Render()
}

// formatArgs renders args as name=value pairs sorted by name.
func formatArgs(args map[string]interface{}) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+formatValue(args[name]))
	}
	return strings.Join(parts, " ")
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case common.Address:
		return x.Hex()
	case common.Hash:
		return x.Hex()
	case *big.Int:
		return x.String()
	case string:
		return strconv.Quote(x)
	case []byte:
		return fmt.Sprintf("0x%x", x)
	case [32]byte:
		return fmt.Sprintf("0x%x", x[:])
	}
	return fmt.Sprint(v)
}

func renderRows(w io.Writer, header []string, rows [][]string) {
	table := newTable(w, header...)
	table.AppendBulk(rows)
	table.Render()
}
