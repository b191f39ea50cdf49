package validator

import (
	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
)

// ApplyRewards derives a profit-style reward from the ranked offer list and
// adds it to each originating peer's running score. The cheapest offer
// defines the zero-profit line: profit = max(0, best - price). Since the
// list is sorted ascending, no offer priced above the best ever earns a
// positive reward; the formula is preserved literally.
//
// Score entries are created on first reward and mutated additively. Each
// offer is applied exactly once per call; serializing calls per cycle is
// the caller's responsibility.
func ApplyRewards(ranked []protocol.FlightOffer, scores map[string]float64) {
	if len(ranked) == 0 {
		return
	}

	best := ranked[0].Price
	for _, offer := range ranked {
		profit := best - offer.Price
		if profit < 0 {
			profit = 0
		}
		scores[offer.MinerHotkey] += profit
		log.Debug().Str("hotkey", offer.MinerHotkey).Float64("price", offer.Price).
			Float64("profit", profit).Msg("reward applied")
	}
}
