// Command walrustruth is the backend entry point for the prediction-market
// view service. It loads configuration, validates it, wires dependencies,
// sets up signal handling, and serves the API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sainath5001/walrustruth/internal/app"
	"github.com/sainath5001/walrustruth/internal/config"
	"github.com/sainath5001/walrustruth/internal/keystore"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Parse()

	// Bootstrap logger; replaced once the configured level is known.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.Arg(0) == "encrypt-key" {
		os.Exit(encryptKeyCommand(flag.Args()[1:], logger))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("walrustruth starting",
		slog.String("config", *configPath),
		slog.Int("port", cfg.Server.Port),
		slog.Bool("wallet_configured", cfg.HasWallet()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.New(cfg, logger).Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("shut down gracefully")
		} else {
			logger.Error("exited with error", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	logger.Info("walrustruth stopped")
}

// encryptKeyCommand seals the wallet key from WALRUS_WALLET_PRIVATE_KEY under
// WALRUS_WALLET_KEY_PASSWORD and writes the encrypted key file. The plaintext
// key is only ever read from the environment so it stays out of shell history.
func encryptKeyCommand(args []string, logger *slog.Logger) int {
	fs := flag.NewFlagSet("encrypt-key", flag.ExitOnError)
	out := fs.String("out", "wallet.json", "path to write the encrypted key file")
	_ = fs.Parse(args)

	key, err := keystore.ParseKey(os.Getenv("WALRUS_WALLET_PRIVATE_KEY"))
	if err != nil {
		logger.Error("WALRUS_WALLET_PRIVATE_KEY is not a valid key", slog.String("error", err.Error()))
		return 1
	}
	blob, err := keystore.EncryptKey(key, os.Getenv("WALRUS_WALLET_KEY_PASSWORD"))
	if err != nil {
		logger.Error("failed to encrypt key", slog.String("error", err.Error()))
		return 1
	}
	if err := os.WriteFile(*out, blob, 0o600); err != nil {
		logger.Error("failed to write key file", slog.String("error", err.Error()))
		return 1
	}

	logger.Info("encrypted key written", slog.String("path", *out))
	return 0
}
