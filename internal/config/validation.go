package config

import (
	"fmt"
	"net"
	"net/url"
)

// ValidationError describes an invalid configuration value
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := config.Network.Validate(); err != nil {
		return fmt.Errorf("network validation failed: %w", err)
	}
	if err := config.Contract.Validate(); err != nil {
		return fmt.Errorf("contract validation failed: %w", err)
	}
	if _, err := config.Penalty.Policy(); err != nil {
		return fmt.Errorf("penalty validation failed: %w", err)
	}
	if err := config.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline validation failed: %w", err)
	}
	if err := config.RPC.Validate(); err != nil {
		return fmt.Errorf("rpc validation failed: %w", err)
	}
	if err := config.Reader.Validate(); err != nil {
		return fmt.Errorf("reader validation failed: %w", err)
	}
	if err := config.Server.Validate(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	return nil
}

// Validate checks the network section
func (n *NetworkConfig) Validate() error {
	if n.Passphrase == "" {
		return &ValidationError{Field: "network.passphrase", Value: n.Passphrase, Message: "is required"}
	}
	u, err := url.Parse(n.RPCURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "network.rpc_url", Value: n.RPCURL, Message: "must be an http(s) URL"}
	}
	return nil
}

// Validate checks the contract section
func (c *ContractConfig) Validate() error {
	if c.ID == "" {
		return &ValidationError{Field: "contract.id", Value: c.ID, Message: "is required"}
	}
	return nil
}

// Validate checks the pipeline section
func (p *PipelineConfig) Validate() error {
	if p.TxTimeout <= 0 {
		return &ValidationError{Field: "pipeline.tx_timeout", Value: p.TxTimeout, Message: "must be positive"}
	}
	if p.PollInterval <= 0 {
		return &ValidationError{Field: "pipeline.poll_interval", Value: p.PollInterval, Message: "must be positive"}
	}
	if p.PollAttempts < 1 {
		return &ValidationError{Field: "pipeline.poll_attempts", Value: p.PollAttempts, Message: "must be at least 1"}
	}
	return nil
}

// Validate checks the rpc section
func (r *RPCConfig) Validate() error {
	if r.Timeout <= 0 {
		return &ValidationError{Field: "rpc.timeout", Value: r.Timeout, Message: "must be positive"}
	}
	if r.RequestsPerSecond < 0 {
		return &ValidationError{Field: "rpc.requests_per_second", Value: r.RequestsPerSecond, Message: "must not be negative"}
	}
	if r.Burst < 1 {
		return &ValidationError{Field: "rpc.burst", Value: r.Burst, Message: "must be at least 1"}
	}
	return nil
}

// Validate checks the reader section
func (r *ReaderConfig) Validate() error {
	if r.CacheSize < 1 {
		return &ValidationError{Field: "reader.cache_size", Value: r.CacheSize, Message: "must be at least 1"}
	}
	return nil
}

// Validate checks the server section
func (s *ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(s.Bind); err != nil {
		return &ValidationError{Field: "server.bind", Value: s.Bind, Message: "must be host:port"}
	}
	if s.CloseInterval <= 0 {
		return &ValidationError{Field: "server.close_interval", Value: s.CloseInterval, Message: "must be positive"}
	}
	for _, ip := range s.Admin {
		if net.ParseIP(ip) == nil {
			return &ValidationError{Field: "server.admin", Value: ip, Message: "must be an IP address"}
		}
	}
	if s.MaxQueue < 1 {
		return &ValidationError{Field: "server.max_queue", Value: s.MaxQueue, Message: "must be at least 1"}
	}
	if s.StorageEngine != "pebble" && s.StorageEngine != "leveldb" {
		return &ValidationError{Field: "server.storage_engine", Value: s.StorageEngine, Message: "must be pebble or leveldb"}
	}
	switch s.IndexDriver {
	case "none", "sqlite":
	case "postgres":
		if s.IndexDSN == "" {
			return &ValidationError{Field: "server.index_dsn", Value: s.IndexDSN, Message: "required for postgres"}
		}
	default:
		return &ValidationError{Field: "server.index_driver", Value: s.IndexDriver, Message: "must be none, sqlite or postgres"}
	}
	return nil
}
