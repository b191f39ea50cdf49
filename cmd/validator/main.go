package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/config"
	"github.com/skylane-labs/skylane/internal/kami"
	"github.com/skylane-labs/skylane/internal/refdata"
	"github.com/skylane-labs/skylane/internal/synapse"
	"github.com/skylane-labs/skylane/internal/utils/logger"
	"github.com/skylane-labs/skylane/internal/utils/redis"
	"github.com/skylane-labs/skylane/internal/validator"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting validator...")

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

	var r redis.RedisInterface
	if rc, err := redis.NewRedis(&cfg.RedisEnvConfig); err != nil {
		log.Error().Err(err).Msg("failed to init redis client, continuing without redis")
	} else {
		r = rc
	}

	data := refdata.Load(cfg.MarketsFile, cfg.AirportsFile)

	client := synapse.NewClient(synapse.Config{
		ClientTimeout: cfg.ValidatorEnvConfig.ClientTimeout,
		RetryMax:      1,
		RetryWait:     500 * time.Millisecond,
	})

	v := validator.NewValidator(&cfg.ValidatorEnvConfig, k, r, data, client)
	if v == nil {
		log.Fatal().Msg("failed to construct validator")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received, stopping validator")
		v.Stop()
	}()

	v.Start()

	<-v.Ctx.Done()
	log.Info().Msg("validator stopped")
}
