package validator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/kami"
	"github.com/skylane-labs/skylane/internal/protocol"
	"github.com/skylane-labs/skylane/internal/synapse"
)

const (
	redisCycleCountKey = "validator:cycle_count"
	redisLastResultKey = "validator:last_result"
)

func (v *Validator) syncMetagraph() {
	log.Info().Int("netuid", v.ValidatorConfig.Netuid).Msg("syncing metagraph data")

	newMetagraph, err := v.Kami.GetMetagraph(v.ValidatorConfig.Netuid)
	if err != nil {
		log.Error().Err(err).Msg("failed to get metagraph")
		return
	}

	v.Registry.Update(&newMetagraph.Data)
	log.Info().Int("peers", len(newMetagraph.Data.Hotkeys)).Msg("metagraph synced")
}

func (v *Validator) syncBlock() {
	newBlockResp, err := v.Kami.GetLatestBlock()
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest block")
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.LatestBlock = int64(newBlockResp.Data.BlockNumber)
}

// searchRound runs one spontaneous aggregation cycle with a default intent,
// keeping miners scored even when no external caller is active.
func (v *Validator) searchRound() {
	intent := protocol.SearchIntent{Limit: v.ValidatorConfig.ResultLimit}
	v.HandleIntent(v.Ctx, intent)
}

// HandleIntent runs one full query-fan-out-and-reward cycle and returns the
// top offers, cheapest first. All failure paths degrade to fewer or no
// results; nothing here is fatal to the process.
func (v *Validator) HandleIntent(ctx context.Context, intent protocol.SearchIntent) []protocol.FlightOffer {
	if !v.cycleRunning.CompareAndSwap(false, true) {
		log.Info().Msg("previous aggregation cycle still running, skipping")
		return []protocol.FlightOffer{}
	}
	defer v.cycleRunning.Store(false)

	queries := v.Synth.Synthesize(intent)
	if len(queries) == 0 {
		log.Warn().Msg("empty batch synthesized, no candidates")
		return []protocol.FlightOffer{}
	}

	batch := protocol.FlightBatchRequest{RequestID: uuid.NewString(), Queries: queries}

	peers := SamplePeers(v.Registry.KnownPeers(), len(queries), v.Hotkey)
	if len(peers) == 0 {
		log.Warn().Msg("no reachable peers to dispatch to")
		return []protocol.FlightOffer{}
	}

	auth, err := v.authHeaders()
	if err != nil {
		log.Error().Err(err).Msg("failed to sign dispatch headers")
		return []protocol.FlightOffer{}
	}

	log.Info().Str("requestId", batch.RequestID).Int("queries", len(queries)).Int("peers", len(peers)).
		Msg("dispatching batch")

	responses := v.Dispatcher.Dispatch(ctx, batch, peers, auth)
	log.Info().Int("responses", len(responses)).Int("dispatched", len(peers)).Msg("batch responses collected")

	ranked := Aggregate(responses)
	if len(ranked) == 0 {
		log.Warn().Msg("no flight options returned from miners")
		return []protocol.FlightOffer{}
	}

	v.mu.Lock()
	ApplyRewards(ranked, v.scores.Scores)
	v.scores.Step++
	step := v.scores.Step
	if err := SaveScores(v.scoresPath, v.scores); err != nil {
		log.Error().Err(err).Msg("failed to save scores")
	}
	v.mu.Unlock()

	v.recordCycle(ctx, batch.RequestID, ranked)
	v.maybeSetWeights(step)

	limit := intent.Limit
	if limit <= 0 {
		limit = v.ValidatorConfig.ResultLimit
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	return ranked[:limit]
}

// authHeaders signs the canonical dispatch message via the kami sidecar.
func (v *Validator) authHeaders() (synapse.AuthHeaders, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signed, err := v.Kami.SignMessage(kami.SignMessageParams{Message: synapse.SignedMessage(v.Hotkey, ts)})
	if err != nil {
		return synapse.AuthHeaders{}, fmt.Errorf("sign message: %w", err)
	}
	return synapse.AuthHeaders{
		Hotkey:    v.Hotkey,
		Timestamp: ts,
		Signature: signed.Data.Signature,
	}, nil
}

// recordCycle keeps lightweight cycle bookkeeping in redis when available.
func (v *Validator) recordCycle(ctx context.Context, requestID string, ranked []protocol.FlightOffer) {
	if v.Redis == nil {
		return
	}

	if _, err := v.Redis.Incr(ctx, redisCycleCountKey); err != nil {
		log.Debug().Err(err).Msg("failed to increment cycle counter")
	}

	top := ranked
	if len(top) > v.ValidatorConfig.ResultLimit && v.ValidatorConfig.ResultLimit > 0 {
		top = top[:v.ValidatorConfig.ResultLimit]
	}
	payload, err := sonic.Marshal(top)
	if err != nil {
		log.Debug().Err(err).Msg("failed to marshal last result")
		return
	}
	key := fmt.Sprintf("%s:%s", redisLastResultKey, requestID)
	if err := v.Redis.Set(ctx, key, string(payload), time.Hour); err != nil {
		log.Debug().Err(err).Msg("failed to cache last result")
	}
}
