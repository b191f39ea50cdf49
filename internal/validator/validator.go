// Package validator implements the validator runtime: metagraph sync,
// search-round orchestration, offer aggregation, and reward application.
package validator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/config"
	"github.com/skylane-labs/skylane/internal/kami"
	"github.com/skylane-labs/skylane/internal/refdata"
	"github.com/skylane-labs/skylane/internal/registry"
	"github.com/skylane-labs/skylane/internal/utils/redis"
)

// Validator coordinates search rounds and on-chain state for the subnet.
type Validator struct {
	Kami       kami.KamiInterface
	Registry   *registry.MetagraphRegistry
	Redis      redis.RedisInterface // optional, nil when unavailable
	Synth      *Synthesizer
	Dispatcher *Dispatcher

	Hotkey      string
	LatestBlock int64

	IntervalConfig  *config.IntervalConfig
	ValidatorConfig *config.ValidatorEnvConfig

	Ctx    context.Context
	Cancel context.CancelFunc
	Wg     sync.WaitGroup

	mu         sync.Mutex // guards scores and LatestBlock
	scores     ScoresData
	scoresPath string

	cycleRunning atomic.Bool // one aggregation cycle at a time
}

// NewValidator constructs a Validator with intervals based on environment.
func NewValidator(
	cfg *config.ValidatorEnvConfig,
	k kami.KamiInterface,
	r redis.RedisInterface,
	data *refdata.Store,
	client BatchSender,
) *Validator {
	intervalConfig := config.NewIntervalConfig(cfg.Environment)

	keyringData, err := k.GetKeyringPair()
	if err != nil {
		log.Error().Err(err).Msg("failed to get validator hotkey")
		return nil
	}

	scores, err := LoadScores(cfg.ScoresFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to load scores from file")
		return nil
	}
	log.Info().Int("step", scores.Step).Int("hotkeys", len(scores.Scores)).Msg("loaded latest scores from file")

	synth := NewSynthesizer(SynthesisConfig{
		MaxBatchSize:        cfg.BatchSize,
		DateWindowDays:      cfg.DateWindowDays,
		PropagateCabin:      cfg.PropagateIntentFields,
		PropagatePassengers: cfg.PropagateIntentFields,
		PropagateCurrency:   cfg.PropagateIntentFields,
	}, data)

	ctx, cancel := context.WithCancel(context.Background())

	log.Info().Msgf("Validator hotkey %s loaded!", keyringData.Data.KeyringPair.Address)

	return &Validator{
		Kami:       k,
		Registry:   registry.NewMetagraphRegistry(),
		Redis:      r,
		Synth:      synth,
		Dispatcher: NewDispatcher(client),

		Hotkey: keyringData.Data.KeyringPair.Address,

		IntervalConfig:  intervalConfig,
		ValidatorConfig: cfg,

		Ctx:    ctx,
		Cancel: cancel,

		scores:     scores,
		scoresPath: cfg.ScoresFile,
	}
}

// runTicker runs a function periodically until the provided context is
// canceled. fn is executed in its own goroutine so the ticker loop can exit
// quickly when the context is canceled.
func (v *Validator) runTicker(ctx context.Context, d time.Duration, fn func()) {
	defer v.Wg.Done()
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			go fn()
		}
	}
}

// Start kicks off the periodic routines and the intent ingress server.
func (v *Validator) Start() {
	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.MetagraphInterval, func() {
		v.syncMetagraph()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.BlockInterval, func() {
		v.syncBlock()
	})

	v.Wg.Add(1)
	go v.runTicker(v.Ctx, v.IntervalConfig.SearchRoundInterval, func() {
		v.searchRound()
	})

	v.Wg.Add(1)
	go func() {
		defer v.Wg.Done()
		if err := v.serveIngress(v.Ctx); err != nil {
			log.Error().Err(err).Msg("ingress server stopped")
		}
	}()
}

// Stop cancels background routines and waits for them to finish.
func (v *Validator) Stop() {
	if v.Cancel != nil {
		v.Cancel()
	}
	v.Wg.Wait()
}
