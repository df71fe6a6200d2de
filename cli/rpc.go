package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"saleprobe/helper"
)

var balanceCommand = &cobra.Command{
	Use:   "balance <address>...",
	Short: "Print the wei balance of accounts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		cp, client, err := dialRequests(ctx, cfg.Node)
		if err != nil {
			return err
		}
		defer cp.Close()

		rows := make([][]string, 0, len(args))
		for _, arg := range args {
			if !common.IsHexAddress(arg) {
				return fmt.Errorf("invalid address %q", arg)
			}
			address := common.HexToAddress(arg)
			balance, err := helper.GetBalance(ctx, client, address)
			if err != nil {
				return err
			}
			rows = append(rows, []string{address.Hex(), balance.String()})
		}
		renderRows(cmd.OutOrStdout(), []string{"Address", "Balance (wei)"}, rows)
		return nil
	},
}

var gasPriceCommand = &cobra.Command{
	Use:   "gas-price",
	Short: "Print the gas price suggested by the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cp, client, err := dialRequests(cmd.Context(), cfg.Node)
		if err != nil {
			return err
		}
		defer cp.Close()

		price, err := helper.GetGasPrice(cmd.Context(), client)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), price.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCommand)
	rootCmd.AddCommand(gasPriceCommand)
}
