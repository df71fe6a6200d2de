package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"saleprobe/db"
	"saleprobe/interfaces"
	"saleprobe/listener"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Follow and record the events of the sale contracts",
	Args:  cobra.NoArgs,
	RunE:  watch,
}

func init() {
	watchCommand.Flags().StringSlice("watch.addresses", nil, "contract addresses to follow")
	_ = viper.BindPFlag("watch.addresses", watchCommand.Flags().Lookup("watch.addresses"))
	watchCommand.Flags().Uint64("watch.fromBlock", 0, "first block of the history to read")
	_ = viper.BindPFlag("watch.fromBlock", watchCommand.Flags().Lookup("watch.fromBlock"))
	rootCmd.AddCommand(watchCommand)
}

func watch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("starting saleprobe watch", "contracts", cfg.Watch.Addresses, "from", cfg.Watch.FromBlock)

	registry, err := loadRegistry(cfg.Artifacts)
	if err != nil {
		return err
	}
	defer func() { _ = registry.Stop() }()
	registry.ListEvents()

	var handler interfaces.DatabaseHandler
	if cfg.InfluxDB.URL != "" {
		handler = db.NewHandler(cfg.InfluxDB)
		defer handler.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cp, client, err := dialNode(ctx, cfg.Node)
	if err != nil {
		return err
	}
	defer cp.Close()

	l, err := listener.NewListener(cfg.Watch, client, registry, handler)
	if err != nil {
		return err
	}
	if err := l.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	slog.Info("stopping saleprobe watch")
	l.Stop()
	return nil
}
