package config

// Config holds the application configuration
type Config struct {
	Node      NodeConfig      `mapstructure:"node"`
	InfluxDB  InfluxDBConfig  `mapstructure:"db"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Deployer  DeployerConfig  `mapstructure:"deployer"`
	Fixture   FixtureConfig   `mapstructure:"fixture"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type NodeConfig struct {
	RPC ConnectionConfig `mapstructure:"rpc"`
	WS  ConnectionConfig `mapstructure:"ws"`
}

type ConnectionConfig struct {
	URLs           []string `mapstructure:"urls"`
	MaxConnections int      `mapstructure:"maxConnections"`
}

// InfluxDBConfig is optional, an empty URL disables event recording.
type InfluxDBConfig struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

// ArtifactsConfig points at a directory of compiled contracts, either
// truffle style json files or bare .abi files.
type ArtifactsConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

type DeployerConfig struct {
	PrivateKey string `mapstructure:"privateKey"`
	ChainID    int64  `mapstructure:"chainId"`
}

// FixtureConfig names the artifacts used for the token sale fixture and
// the gas limits of the deployments that cannot be estimated reliably.
type FixtureConfig struct {
	TokenArtifact   string `mapstructure:"token"`
	TrusteeArtifact string `mapstructure:"trustee"`
	SaleArtifact    string `mapstructure:"sale"`
	TokenGas        uint64 `mapstructure:"tokenGas"`
	TrusteeGas      uint64 `mapstructure:"trusteeGas"`
	SaleGas         uint64 `mapstructure:"saleGas"`
}

type WatchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	FromBlock  uint64   `mapstructure:"fromBlock"`
	BatchSize  uint64   `mapstructure:"batchSize"`
	Processors int      `mapstructure:"processors"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func Default() Config {
	return Config{
		Node: NodeConfig{
			RPC: ConnectionConfig{MaxConnections: 4},
			WS:  ConnectionConfig{MaxConnections: 2},
		},
		Artifacts: ArtifactsConfig{Dir: "build/contracts"},
		Deployer:  DeployerConfig{ChainID: 1337},
		Fixture:   DefaultFixture(),
		Watch: WatchConfig{
			BatchSize:  100,
			Processors: 4,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func DefaultFixture() FixtureConfig {
	return FixtureConfig{
		TokenArtifact:   "SimpleToken",
		TrusteeArtifact: "Trustee",
		SaleArtifact:    "TokenSaleMock",
		TrusteeGas:      3500000,
		SaleGas:         4500000,
	}
}
