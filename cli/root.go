package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"saleprobe/config"
	"saleprobe/net"
	"saleprobe/schema"
)

var rootCmd = &cobra.Command{
	Use:   "saleprobe",
	Short: "saleprobe deploys and inspects token sale contracts",
	Long: "saleprobe deploys the token, trustee and sale contracts, decodes the events of their " +
		"transactions against the compiled contract artifacts and follows them on a live node",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		return errors.New("unable to run root command")
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "path to the configuration file")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().StringSlice("node.rpc.urls", nil, "node rpc urls")
	_ = viper.BindPFlag("node.rpc.urls", rootCmd.PersistentFlags().Lookup("node.rpc.urls"))
	rootCmd.PersistentFlags().StringSlice("node.ws.urls", nil, "node websocket urls, used for subscriptions")
	_ = viper.BindPFlag("node.ws.urls", rootCmd.PersistentFlags().Lookup("node.ws.urls"))
	rootCmd.PersistentFlags().String("artifacts.dir", config.Default().Artifacts.Dir, "directory of compiled contract artifacts")
	_ = viper.BindPFlag("artifacts.dir", rootCmd.PersistentFlags().Lookup("artifacts.dir"))
	rootCmd.PersistentFlags().String("db.url", "", "influx db url, events are not recorded when empty")
	_ = viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db.url"))
	rootCmd.PersistentFlags().String("logging.level", config.Default().Logging.Level, "log level: debug, info, warn or error")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("logging.level"))
}

func initConfig() {
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			log.Printf("Failed to read config file: %v", err)
		}
	}
	initLogging()
}

func initLogging() {
	logLevel := viper.GetString("logging.level")
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	slog.SetDefault(slog.New(handler))
	slog.Debug("Setting log level", "level", logLevel)
}

func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

func loadRegistry(cfg config.ArtifactsConfig) (*schema.Registry, error) {
	registry := schema.NewRegistry(cfg)
	if err := registry.Start(); err != nil {
		return nil, fmt.Errorf("failed to load artifacts from %s: %w", cfg.Dir, err)
	}
	return registry, nil
}

// dialNode connects to the configured node and returns the connections
// along with one event client picked from them. Subscriptions and
// deployments go through it.
func dialNode(ctx context.Context, cfg config.NodeConfig) (net.ConnectionProvider, *ethclient.Client, error) {
	cp, err := net.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cp, cp.GetWebSocketConnection().Client, nil
}

// dialRequests is dialNode for one-off queries, served by the rpc pool.
func dialRequests(ctx context.Context, cfg config.NodeConfig) (net.ConnectionProvider, *ethclient.Client, error) {
	cp, err := net.Dial(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cp, net.RequestClient(cp), nil
}
