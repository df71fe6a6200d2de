package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"saleprobe/config"
	"saleprobe/contract"
	"saleprobe/fixture"
)

var deployCommand = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the token sale fixture",
	Long: "deploy creates the token, the trustee and the mock sale from the configured artifacts, " +
		"funds the sale and the trustee and initializes the sale",
	Args: cobra.NoArgs,
	RunE: deploy,
}

func init() {
	deployCommand.Flags().Bool("trustee-only", false, "deploy only the token and the trustee")
	rootCmd.AddCommand(deployCommand)
}

func deploy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	trusteeOnly, _ := cmd.Flags().GetBool("trustee-only")

	if cfg.Deployer.PrivateKey == "" {
		return fmt.Errorf("deployer.privateKey is not configured, set %s_DEPLOYER_PRIVATEKEY", config.EnvPrefix)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Deployer.PrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("invalid deployer key: %w", err)
	}

	cfg.Artifacts.Watch = false
	registry, err := loadRegistry(cfg.Artifacts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cp, client, err := dialNode(ctx, cfg.Node)
	if err != nil {
		return err
	}
	defer cp.Close()

	deployer := contract.NewClient(client, key, big.NewInt(cfg.Deployer.ChainID))
	f := fixture.New(cfg.Fixture, deployer, registry)

	var contracts *fixture.Contracts
	if trusteeOnly {
		contracts, err = f.DeployTrustee(ctx)
	} else {
		contracts, err = f.DeployContracts(ctx)
	}
	if err != nil {
		return err
	}

	rows := [][]string{
		{contracts.Token.Name(), contracts.Token.Address().Hex()},
		{contracts.Trustee.Name(), contracts.Trustee.Address().Hex()},
	}
	if contracts.Sale != nil {
		rows = append(rows, []string{contracts.Sale.Name(), contracts.Sale.Address().Hex()})
	}
	renderRows(cmd.OutOrStdout(), []string{"Contract", "Address"}, rows)

	if a := contracts.Allocation; a.Max != nil {
		renderRows(cmd.OutOrStdout(), []string{"Allocation", "Tokens"}, [][]string{
			{"max", a.Max.String()},
			{"sale", a.Sale.String()},
			{"trustee", a.Trustee.String()},
			{"future", a.Future.String()},
		})
	}
	return nil
}
