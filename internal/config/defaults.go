package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultPassphrase is the network of a standalone node
	DefaultPassphrase = "Standalone Vault Network ; 2024"

	// DefaultContractID is the vault contract deployed on a standalone node
	DefaultContractID = "CVAULTSTANDALONE"
)

// setDefaults sets every default value
func setDefaults(v *viper.Viper) {
	// Network defaults
	v.SetDefault("network.passphrase", DefaultPassphrase)
	v.SetDefault("network.rpc_url", "http://127.0.0.1:8000")

	// Contract defaults
	v.SetDefault("contract.id", DefaultContractID)

	// Penalty defaults: the selectable 5-10% range
	v.SetDefault("penalty.mode", "range")
	v.SetDefault("penalty.fixed_percent", 7)
	v.SetDefault("penalty.min_percent", 5)
	v.SetDefault("penalty.max_percent", 10)

	// Pipeline defaults
	v.SetDefault("pipeline.tx_timeout", 30*time.Second)
	v.SetDefault("pipeline.poll_interval", time.Second)
	v.SetDefault("pipeline.poll_attempts", 10)
	v.SetDefault("pipeline.base_fee", 100)

	// RPC client defaults
	v.SetDefault("rpc.timeout", 30*time.Second)
	v.SetDefault("rpc.requests_per_second", 20)
	v.SetDefault("rpc.burst", 5)

	// Reader defaults
	v.SetDefault("reader.cache_size", 1024)

	// Server defaults
	v.SetDefault("server.bind", "127.0.0.1:8000")
	v.SetDefault("server.close_interval", time.Second)
	v.SetDefault("server.data_dir", "") // empty means in-memory
	v.SetDefault("server.storage_engine", "pebble")
	v.SetDefault("server.admin", []string{"127.0.0.1"})
	v.SetDefault("server.max_queue", 1000)
	v.SetDefault("server.index_driver", "sqlite")
	v.SetDefault("server.index_dsn", "")
}
