package validator

import (
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/kami"
	chainutils "github.com/skylane-labs/skylane/internal/utils/chainutils"
)

const weightsVersionKey = 1

// maybeSetWeights emits weights every Nth completed cycle, where N is the
// ratio of the weight-setting interval to the search-round interval.
func (v *Validator) maybeSetWeights(step int) {
	weightSettingSteps := int(v.IntervalConfig.WeightSettingInterval / v.IntervalConfig.SearchRoundInterval)
	if weightSettingSteps <= 0 {
		weightSettingSteps = 1
	}

	if step == 0 || step%weightSettingSteps != 0 {
		log.Debug().Int("step", step).Int("every", weightSettingSteps).Msg("not a weight-setting step")
		return
	}

	v.setWeights()
}

func (v *Validator) setWeights() {
	peers := v.Registry.KnownPeers()
	if len(peers) == 0 {
		log.Info().Msg("no known peers, skipping weight setting")
		return
	}

	v.mu.Lock()
	scores := make(map[string]float64, len(v.scores.Scores))
	for k, s := range v.scores.Scores {
		scores[k] = s
	}
	v.mu.Unlock()

	uids := make([]int64, 0, len(peers))
	weights := make([]float64, 0, len(peers))
	for _, p := range peers {
		uids = append(uids, int64(p.UID))
		weights = append(weights, scores[p.Hotkey])
	}

	weights = chainutils.NormalizeWeights(chainutils.ClampNegativeWeights(weights))

	dests, vals, err := chainutils.ConvertWeightsAndUidsForEmit(uids, weights)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert weights for emit")
		return
	}
	if len(dests) == 0 {
		log.Info().Msg("no positive weights to set")
		return
	}

	if _, err := v.Kami.SetWeights(kami.SetWeightsParams{
		Netuid:     v.ValidatorConfig.Netuid,
		Dests:      dests,
		Weights:    vals,
		VersionKey: weightsVersionKey,
	}); err != nil {
		log.Error().Err(err).Msg("failed to set weights")
		return
	}
	log.Info().Int("uids", len(dests)).Msg("weights set on chain")
}
