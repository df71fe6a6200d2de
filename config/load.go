package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "SALEPROBE"

// SetDefaults registers every key with its default value. Keys viper does
// not know about are not looked up in the environment.
func SetDefaults(v *viper.Viper) {
	d := Default()
	defaults := map[string]interface{}{
		"node.rpc.urls":           d.Node.RPC.URLs,
		"node.rpc.maxConnections": d.Node.RPC.MaxConnections,
		"node.ws.urls":            d.Node.WS.URLs,
		"node.ws.maxConnections":  d.Node.WS.MaxConnections,
		"db.url":                  d.InfluxDB.URL,
		"db.token":                d.InfluxDB.Token,
		"db.org":                  d.InfluxDB.Org,
		"db.bucket":               d.InfluxDB.Bucket,
		"artifacts.dir":           d.Artifacts.Dir,
		"artifacts.watch":         d.Artifacts.Watch,
		"deployer.privateKey":     d.Deployer.PrivateKey,
		"deployer.chainId":        d.Deployer.ChainID,
		"fixture.token":           d.Fixture.TokenArtifact,
		"fixture.trustee":         d.Fixture.TrusteeArtifact,
		"fixture.sale":            d.Fixture.SaleArtifact,
		"fixture.tokenGas":        d.Fixture.TokenGas,
		"fixture.trusteeGas":      d.Fixture.TrusteeGas,
		"fixture.saleGas":         d.Fixture.SaleGas,
		"watch.addresses":         d.Watch.Addresses,
		"watch.fromBlock":         d.Watch.FromBlock,
		"watch.batchSize":         d.Watch.BatchSize,
		"watch.processors":        d.Watch.Processors,
		"logging.level":           d.Logging.Level,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the settings of v on top of the defaults.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
