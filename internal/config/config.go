// Package config defines the top-level configuration for the walrustruth
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by WALRUS_* environment variables. Every
// field has a safe fallback so a bare config still boots a read-only view.
type Config struct {
	Chain       ChainConfig       `toml:"chain"`
	Wallet      WalletConfig      `toml:"wallet"`
	Evidence    EvidenceConfig    `toml:"evidence"`
	S3          S3Config          `toml:"s3"`
	Redis       RedisConfig       `toml:"redis"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Admin       AdminConfig       `toml:"admin"`
	Server      ServerConfig      `toml:"server"`
	LogLevel    string            `toml:"log_level"`
}

// ChainConfig holds the RPC endpoint and the two contract addresses the
// service talks to.
type ChainConfig struct {
	RPCURL          string `toml:"rpc_url"`
	ChainID         int64  `toml:"chain_id"`
	RegistryAddress string `toml:"registry_address"`
	TokenAddress    string `toml:"token_address"`
	TokenDecimals   int    `toml:"token_decimals"`
	// MaxAllowance is the approval amount, in whole tokens, granted to the
	// registry when an allowance top-up is needed. Approving a large amount
	// once lets repeat bets skip the approval leg.
	MaxAllowance int64 `toml:"max_allowance"`
}

// WalletConfig holds the acting wallet's key material. Either a raw hex key or
// an encrypted key file produced by the keystore package.
type WalletConfig struct {
	PrivateKey       string `toml:"private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
}

// EvidenceConfig selects where evidence files are uploaded. Mode "http" posts
// to UploadURL (the Walrus publisher endpoint); mode "s3" writes to the bucket
// in S3Config. BaseURI prefixes object names when the store does not return a
// full URI itself.
type EvidenceConfig struct {
	Mode      string `toml:"mode"`
	UploadURL string `toml:"upload_url"`
	BaseURI   string `toml:"base_uri"`
}

// S3Config holds S3-compatible object storage parameters for evidence files.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// RedisConfig holds Redis connection parameters for the query cache and the
// invalidation bus.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	// CacheTTLSeconds bounds how stale a cached read may get before it is
	// refetched even without an invalidation.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`
}

// LeaderboardConfig points at the external leaderboard. An empty URL falls
// back to static sample data.
type LeaderboardConfig struct {
	URL string `toml:"url"`
}

// AdminConfig holds the static allow-list of addresses offered privileged
// affordances. Comparison is case-insensitive.
type AdminConfig struct {
	Addresses []string `toml:"addresses"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	// MutationRateLimit caps write requests per client IP per minute.
	// Zero disables the limiter.
	MutationRateLimit int `toml:"mutation_rate_limit"`
}

// Defaults returns a Config populated with safe default values.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:        "https://rpc.sepolia.org",
			ChainID:       11155111,
			TokenDecimals: 6,
			MaxAllowance:  1_000_000,
		},
		Evidence: EvidenceConfig{
			Mode: "http",
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "walrustruth-evidence",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			DB:              0,
			PoolSize:        20,
			MaxRetries:      3,
			CacheTTLSeconds: 30,
		},
		Server: ServerConfig{
			Port:              8000,
			CORSOrigins:       []string{"http://localhost:3000", "http://localhost:5173"},
			MutationRateLimit: 30,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validEvidenceModes enumerates the accepted values for Evidence.Mode.
var validEvidenceModes = map[string]bool{
	"http": true,
	"s3":   true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Chain.RPCURL == "" {
		errs = append(errs, "chain: rpc_url must not be empty")
	}
	if c.Chain.ChainID <= 0 {
		errs = append(errs, "chain: chain_id must be positive")
	}
	if c.Chain.RegistryAddress == "" {
		errs = append(errs, "chain: registry_address must not be empty")
	}
	if c.Chain.TokenAddress == "" {
		errs = append(errs, "chain: token_address must not be empty")
	}
	if c.Chain.TokenDecimals < 0 || c.Chain.TokenDecimals > 36 {
		errs = append(errs, fmt.Sprintf("chain: token_decimals must be 0-36, got %d", c.Chain.TokenDecimals))
	}
	if c.Chain.MaxAllowance <= 0 {
		errs = append(errs, "chain: max_allowance must be > 0")
	}

	// Wallet is optional (read-only deployments), but an encrypted key file
	// needs its password.
	if c.Wallet.EncryptedKeyPath != "" && c.Wallet.KeyPassword == "" {
		errs = append(errs, "wallet: key_password is required when encrypted_key_path is set")
	}

	if !validEvidenceModes[strings.ToLower(c.Evidence.Mode)] {
		errs = append(errs, fmt.Sprintf("evidence: unknown mode %q (valid: http, s3)", c.Evidence.Mode))
	}
	if strings.EqualFold(c.Evidence.Mode, "s3") {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty in s3 evidence mode")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty in s3 evidence mode")
		}
	}

	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}
	if c.Redis.CacheTTLSeconds < 1 {
		errs = append(errs, "redis: cache_ttl_seconds must be >= 1")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// HasWallet reports whether any key material is configured. Without a wallet
// the service runs read-only and every mutation fails validation up front.
func (c *Config) HasWallet() bool {
	return c.Wallet.PrivateKey != "" || c.Wallet.EncryptedKeyPath != ""
}
