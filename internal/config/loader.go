package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies WALRUS_* environment variable overrides, and
// returns the final Config. A missing file is not an error; the defaults plus
// environment are enough to run. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known WALRUS_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This lets
// operators inject secrets at deploy time without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// --- Chain ---
	setStr(&cfg.Chain.RPCURL, "WALRUS_RPC_URL")
	setInt64(&cfg.Chain.ChainID, "WALRUS_CHAIN_ID")
	setStr(&cfg.Chain.RegistryAddress, "WALRUS_MARKET_ADDRESS")
	setStr(&cfg.Chain.TokenAddress, "WALRUS_USDC_ADDRESS")
	setInt(&cfg.Chain.TokenDecimals, "WALRUS_TOKEN_DECIMALS")
	setInt64(&cfg.Chain.MaxAllowance, "WALRUS_MAX_ALLOWANCE")

	// --- Wallet ---
	setStr(&cfg.Wallet.PrivateKey, "WALRUS_WALLET_PRIVATE_KEY")
	setStr(&cfg.Wallet.EncryptedKeyPath, "WALRUS_WALLET_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Wallet.KeyPassword, "WALRUS_WALLET_KEY_PASSWORD")

	// --- Evidence ---
	setStr(&cfg.Evidence.Mode, "WALRUS_EVIDENCE_MODE")
	setStr(&cfg.Evidence.UploadURL, "WALRUS_UPLOAD_URL")
	setStr(&cfg.Evidence.BaseURI, "WALRUS_METADATA_BASE")

	// --- S3 ---
	setStr(&cfg.S3.Endpoint, "WALRUS_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "WALRUS_S3_REGION")
	setStr(&cfg.S3.Bucket, "WALRUS_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "WALRUS_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "WALRUS_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "WALRUS_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "WALRUS_S3_FORCE_PATH_STYLE")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "WALRUS_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "WALRUS_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "WALRUS_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "WALRUS_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "WALRUS_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "WALRUS_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLSeconds, "WALRUS_REDIS_CACHE_TTL_SECONDS")

	// --- Leaderboard ---
	setStr(&cfg.Leaderboard.URL, "WALRUS_LEADERBOARD_URL")

	// --- Admin ---
	setStringSlice(&cfg.Admin.Addresses, "WALRUS_ADMIN_ADDRESSES")

	// --- Server ---
	setInt(&cfg.Server.Port, "WALRUS_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "WALRUS_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "WALRUS_SERVER_API_KEY")
	setInt(&cfg.Server.MutationRateLimit, "WALRUS_SERVER_MUTATION_RATE_LIMIT")

	// --- Top-level ---
	setStr(&cfg.LogLevel, "WALRUS_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
