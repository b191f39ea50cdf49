package validator

import (
	"math/rand/v2"

	"github.com/skylane-labs/skylane/internal/registry"
)

// SamplePeers returns up to k distinct peers chosen uniformly at random
// from those currently reachable, excluding self and peers without a served
// axon. When fewer than k peers exist, all of them are returned; no padding,
// no error. Explicitly non-deterministic per call.
func SamplePeers(peers []registry.Peer, k int, selfHotkey string) []registry.Peer {
	if k <= 0 {
		return nil
	}

	candidates := make([]registry.Peer, 0, len(peers))
	for _, p := range peers {
		if p.Hotkey == selfHotkey || p.Address == "" {
			continue
		}
		candidates = append(candidates, p)
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}
