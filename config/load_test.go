package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
node:
  rpc:
    urls: ["http://localhost:8545"]
artifacts:
  dir: contracts/build
watch:
  addresses: ["0x0000000000000000000000000000000000000703"]
  fromBlock: 120
`

func TestLoad(t *testing.T) {
	t.Setenv("SALEPROBE_WATCH_BATCHSIZE", "50")
	t.Setenv("SALEPROBE_DEPLOYER_PRIVATEKEY", "0xabc")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(sampleConfig)))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:8545"}, cfg.Node.RPC.URLs)
	assert.Equal(t, 4, cfg.Node.RPC.MaxConnections)
	assert.Equal(t, "contracts/build", cfg.Artifacts.Dir)
	assert.Equal(t, uint64(120), cfg.Watch.FromBlock)
	assert.Equal(t, uint64(50), cfg.Watch.BatchSize)
	assert.Equal(t, "0xabc", cfg.Deployer.PrivateKey)
	assert.Equal(t, int64(1337), cfg.Deployer.ChainID)
	assert.Equal(t, DefaultFixture(), cfg.Fixture)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestDefaultFixture(t *testing.T) {
	f := DefaultFixture()
	assert.Equal(t, uint64(3500000), f.TrusteeGas)
	assert.Equal(t, uint64(4500000), f.SaleGas)
	assert.Zero(t, f.TokenGas, "token deployment gas is estimated")
}
