package config

import (
	"time"

	"github.com/LeJamon/goVaultd/internal/core/penalty"
	"github.com/LeJamon/goVaultd/internal/core/tx"
	"github.com/LeJamon/goVaultd/internal/rpc/client"
)

// Config represents the complete vaultd configuration. It is built once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Network  NetworkConfig  `toml:"network" mapstructure:"network"`
	Contract ContractConfig `toml:"contract" mapstructure:"contract"`
	Penalty  PenaltyConfig  `toml:"penalty" mapstructure:"penalty"`
	Pipeline PipelineConfig `toml:"pipeline" mapstructure:"pipeline"`
	RPC      RPCConfig      `toml:"rpc" mapstructure:"rpc"`
	Reader   ReaderConfig   `toml:"reader" mapstructure:"reader"`
	Server   ServerConfig   `toml:"server" mapstructure:"server"`

	// Internal fields
	configPath string
}

// NetworkConfig identifies the ledger the client talks to
type NetworkConfig struct {
	Passphrase string `toml:"passphrase" mapstructure:"passphrase"`
	RPCURL     string `toml:"rpc_url" mapstructure:"rpc_url"`
}

// ContractConfig names the deployed vault contract
type ContractConfig struct {
	ID string `toml:"id" mapstructure:"id"`
}

// PenaltyConfig selects the early-withdrawal rate policy of the deployed
// contract variant: a single fixed rate or an inclusive range.
type PenaltyConfig struct {
	Mode         string `toml:"mode" mapstructure:"mode"`
	FixedPercent uint32 `toml:"fixed_percent" mapstructure:"fixed_percent"`
	MinPercent   uint32 `toml:"min_percent" mapstructure:"min_percent"`
	MaxPercent   uint32 `toml:"max_percent" mapstructure:"max_percent"`
}

// PipelineConfig holds transaction timings
type PipelineConfig struct {
	TxTimeout    time.Duration `toml:"tx_timeout" mapstructure:"tx_timeout"`
	PollInterval time.Duration `toml:"poll_interval" mapstructure:"poll_interval"`
	PollAttempts int           `toml:"poll_attempts" mapstructure:"poll_attempts"`
	BaseFee      uint64        `toml:"base_fee" mapstructure:"base_fee"`
}

// RPCConfig configures the JSON-RPC client
type RPCConfig struct {
	Timeout           time.Duration `toml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `toml:"burst" mapstructure:"burst"`
}

// ReaderConfig sizes the vault record cache
type ReaderConfig struct {
	CacheSize int `toml:"cache_size" mapstructure:"cache_size"`
}

// ServerConfig configures the standalone ledger node
type ServerConfig struct {
	Bind          string        `toml:"bind" mapstructure:"bind"`
	CloseInterval time.Duration `toml:"close_interval" mapstructure:"close_interval"`
	DataDir       string        `toml:"data_dir" mapstructure:"data_dir"`
	StorageEngine string        `toml:"storage_engine" mapstructure:"storage_engine"`
	Admin         []string      `toml:"admin" mapstructure:"admin"`
	MaxQueue      int           `toml:"max_queue" mapstructure:"max_queue"`

	// IndexDriver is "none", "sqlite" or "postgres"
	IndexDriver string `toml:"index_driver" mapstructure:"index_driver"`
	// IndexDSN is the postgres connection string or sqlite file;
	// an empty sqlite DSN places index.db in data_dir
	IndexDSN string `toml:"index_dsn" mapstructure:"index_dsn"`
}

// GetConfigPath returns the file the configuration was read from, if any
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// PenaltyPolicy resolves the configured penalty policy
func (c *Config) PenaltyPolicy() (penalty.Policy, error) {
	return c.Penalty.Policy()
}

// Policy builds the policy described by the section
func (p *PenaltyConfig) Policy() (penalty.Policy, error) {
	switch penalty.Mode(p.Mode) {
	case penalty.ModeFixed:
		return penalty.Fixed(p.FixedPercent)
	case penalty.ModeRange:
		return penalty.Range(p.MinPercent, p.MaxPercent)
	}
	return penalty.Policy{}, &ValidationError{Field: "penalty.mode", Value: p.Mode, Message: "must be fixed or range"}
}

// TxConfig returns the pipeline settings for the configured contract
func (c *Config) TxConfig() tx.Config {
	return tx.Config{
		Contract:     c.Contract.ID,
		Network:      c.Network.Passphrase,
		BaseFee:      c.Pipeline.BaseFee,
		Timeout:      c.Pipeline.TxTimeout,
		PollInterval: c.Pipeline.PollInterval,
		PollAttempts: c.Pipeline.PollAttempts,
	}
}

// ClientConfig returns the RPC client settings
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		URL:               c.Network.RPCURL,
		Timeout:           c.RPC.Timeout,
		RequestsPerSecond: c.RPC.RequestsPerSecond,
		Burst:             c.RPC.Burst,
	}
}
