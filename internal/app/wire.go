// Package app wires concrete implementations to configuration and runs the
// service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/sainath5001/walrustruth/internal/blob/httpblob"
	s3blob "github.com/sainath5001/walrustruth/internal/blob/s3"
	"github.com/sainath5001/walrustruth/internal/cache/redis"
	"github.com/sainath5001/walrustruth/internal/chain"
	"github.com/sainath5001/walrustruth/internal/config"
	"github.com/sainath5001/walrustruth/internal/domain"
	"github.com/sainath5001/walrustruth/internal/keystore"
	"github.com/sainath5001/walrustruth/internal/leaderboard"
	"github.com/sainath5001/walrustruth/internal/service"
)

// Dependencies bundles every wired collaborator the application needs. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Views     *service.ViewService
	Mutations *service.MutationService
	Countdown *service.CountdownWatcher

	Bus         domain.EventBus
	RateLimiter domain.RateLimiter

	// WalletAddress is the acting address in lowercase hex, empty when
	// running read-only.
	WalletAddress string
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that must
// be called on shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Wallet (optional; absent means read-only) ---
	var signer *chain.Signer
	if cfg.HasWallet() {
		key, err := keystore.LoadKey(keystore.KeyConfig{
			RawPrivateKey:    cfg.Wallet.PrivateKey,
			EncryptedKeyPath: cfg.Wallet.EncryptedKeyPath,
			KeyPassword:      cfg.Wallet.KeyPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("wire: wallet key: %w", err)
		}
		signer = chain.NewSigner(key, cfg.Chain.ChainID)
	}

	// --- Chain ---
	chainClient, err := chain.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: chain: %w", err)
	}
	closers = append(closers, chainClient.Close)

	registry, err := chain.NewRegistry(chainClient, cfg.Chain.RegistryAddress, signer, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: registry: %w", err)
	}
	token, err := chain.NewToken(chainClient, cfg.Chain.TokenAddress, signer, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: token: %w", err)
	}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	cache := redis.NewQueryCache(redisClient)
	bus := redis.NewEventBus(redisClient)
	locker := redis.NewLocker(redisClient)
	limiter := redis.NewRateLimiter(redisClient)

	// --- Evidence store ---
	var evidence domain.EvidenceStore
	switch cfg.Evidence.Mode {
	case "s3":
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		evidence = s3blob.NewStore(s3Client, cfg.Evidence.BaseURI)
	default:
		evidence = httpblob.NewUploader(cfg.Evidence.UploadURL, nil)
	}

	// --- Services ---
	clock := domain.SystemClock{}
	ttl := time.Duration(cfg.Redis.CacheTTLSeconds) * time.Second

	lb := leaderboard.NewClient(cfg.Leaderboard.URL, nil, logger)
	views := service.NewViewService(registry, token, cache, lb, clock, ttl, logger)

	walletAddress := ""
	if signer != nil {
		walletAddress = signer.Address()
	}

	mutations := service.NewMutationService(
		registry, token, evidence, cache, bus,
		domain.NewAdminGate(cfg.Admin.Addresses),
		locker, clock,
		service.MutationConfig{
			WalletAddress:   walletAddress,
			RegistryAddress: cfg.Chain.RegistryAddress,
			MaxAllowance:    maxAllowanceBaseUnits(cfg.Chain.MaxAllowance, cfg.Chain.TokenDecimals),
		},
		logger,
	)

	return &Dependencies{
		Views:         views,
		Mutations:     mutations,
		Countdown:     service.NewCountdownWatcher(clock, time.Second),
		Bus:           bus,
		RateLimiter:   limiter,
		WalletAddress: walletAddress,
	}, cleanup, nil
}

// maxAllowanceBaseUnits converts a whole-token allowance to base units.
func maxAllowanceBaseUnits(tokens int64, decimals int) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(tokens), scale)
}
