package validator

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
)

// Aggregate flattens every offer across all peers and all query positions
// into one candidate list, stamps the originating hotkey, drops offers that
// fail validation, and sorts ascending by price. The sort is stable: exact
// price ties keep dispatch-order precedence.
func Aggregate(responses []PeerResponse) []protocol.FlightOffer {
	var offers []protocol.FlightOffer
	for _, pr := range responses {
		for _, position := range pr.Response.Responses {
			for _, offer := range position {
				if err := offer.Validate(); err != nil {
					log.Debug().Err(err).Str("hotkey", pr.Peer.Hotkey).Msg("dropping malformed offer")
					continue
				}
				offer.MinerHotkey = pr.Peer.Hotkey
				offers = append(offers, offer)
			}
		}
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Price < offers[j].Price
	})
	return offers
}
