package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"saleprobe/db"
	"saleprobe/schema"
)

var decodeCommand = &cobra.Command{
	Use:   "decode <tx-hash>",
	Short: "Decode the event logs of a mined transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  decode,
}

func init() {
	decodeCommand.Flags().Bool("record", false, "write the decoded events to influx db")
	decodeCommand.Flags().StringSlice("contract", nil, "restrict decoding to the events of these artifacts")
	rootCmd.AddCommand(decodeCommand)
}

func decode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	txHash, err := schema.TopicFromHex(args[0])
	if err != nil {
		return fmt.Errorf("invalid transaction hash: %w", err)
	}
	record, _ := cmd.Flags().GetBool("record")
	contracts, _ := cmd.Flags().GetStringSlice("contract")

	cfg.Artifacts.Watch = false
	registry, err := loadRegistry(cfg.Artifacts)
	if err != nil {
		return err
	}
	decoder, err := registry.Decoder(contracts...)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cp, client, err := dialRequests(ctx, cfg.Node)
	if err != nil {
		return err
	}
	defer cp.Close()

	receipt, err := client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return fmt.Errorf("failed to fetch receipt of %s: %w", txHash.Hex(), err)
	}
	slog.Debug("receipt fetched", "tx", txHash, "status", receipt.Status, "gasUsed", receipt.GasUsed, "logs", len(receipt.Logs))

	logs, err := decoder.Decode(receipt.Logs)
	if err != nil {
		return err
	}
	renderLogs(cmd.OutOrStdout(), logs)

	if !record {
		return nil
	}
	if cfg.InfluxDB.URL == "" {
		return errors.New("--record needs db.url to be configured")
	}
	header, err := client.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch block %s: %w", receipt.BlockNumber, err)
	}
	handler := db.NewHandler(cfg.InfluxDB)
	defer handler.Close()
	ts := time.Unix(int64(header.Time), 0)
	for _, log := range logs {
		handler.WriteEvent(log, ts)
	}
	slog.Info("events recorded", "tx", txHash, "count", len(logs))
	return nil
}
