package validator

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/skylane-labs/skylane/internal/protocol"
	"github.com/skylane-labs/skylane/internal/registry"
	"github.com/skylane-labs/skylane/internal/synapse"
)

// BatchSender is the transport surface the dispatcher fans out over.
type BatchSender interface {
	SendBatch(ctx context.Context, baseURL string, batch protocol.FlightBatchRequest, auth synapse.AuthHeaders) (protocol.FlightBatchResponse, error)
}

// PeerResponse pairs a batch response with the peer that produced it.
type PeerResponse struct {
	Peer     registry.Peer
	Response protocol.FlightBatchResponse
}

type Dispatcher struct {
	client BatchSender
}

func NewDispatcher(client BatchSender) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch sends the batch to every peer concurrently and waits for all to
// either respond or fail. Peers that fail, time out, or are unreachable are
// omitted from the result: a partial response set is success, not failure.
// Collected responses preserve dispatch order.
func (d *Dispatcher) Dispatch(ctx context.Context, batch protocol.FlightBatchRequest, peers []registry.Peer, auth synapse.AuthHeaders) []PeerResponse {
	results := make([]*PeerResponse, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))
	for i, peer := range peers {
		go func(i int, peer registry.Peer) {
			defer wg.Done()
			resp, err := d.client.SendBatch(ctx, peer.Address, batch, auth)
			if err != nil {
				log.Warn().Err(err).Str("hotkey", peer.Hotkey).Msg("peer did not respond")
				return
			}
			results[i] = &PeerResponse{
				Peer:     peer,
				Response: normalizeResponse(resp, len(batch.Queries)),
			}
		}(i, peer)
	}
	wg.Wait()

	collected := make([]PeerResponse, 0, len(peers))
	for _, r := range results {
		if r != nil {
			collected = append(collected, *r)
		}
	}
	return collected
}

// normalizeResponse forces the positional contract: exactly one offer list
// per query. A peer that returned fewer entries contributes "no offer" for
// the missing positions instead of failing the whole batch.
func normalizeResponse(resp protocol.FlightBatchResponse, numQueries int) protocol.FlightBatchResponse {
	if len(resp.Responses) == numQueries {
		return resp
	}
	normalized := make([][]protocol.FlightOffer, numQueries)
	copy(normalized, resp.Responses)
	resp.Responses = normalized
	return resp
}
