package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/config"
	"github.com/skylane-labs/skylane/internal/kami"
	"github.com/skylane-labs/skylane/internal/miner"
	"github.com/skylane-labs/skylane/internal/pricing"
	"github.com/skylane-labs/skylane/internal/utils/logger"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting miner...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	k, err := kami.NewKami(&cfg.KamiEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init kami client")
	}

	source, err := pricing.NewClient(&cfg.PricingEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pricing client")
	}
	if !source.Configured() {
		log.Warn().Msg("no pricing API key configured, serving fallback offers only")
	}

	m := miner.NewMiner(&cfg.MinerEnvConfig, k, source)
	m.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutdown signal received, stopping miner")
	m.Stop()
}
