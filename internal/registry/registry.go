// Package registry provides a narrow read-only view of subnet participants,
// backed by periodically refreshed metagraph snapshots. Business logic never
// touches the metagraph directly so it stays testable with a fake registry.
package registry

import (
	"fmt"
	"sync"

	"github.com/skylane-labs/skylane/internal/kami"
)

// effectiveRootWeight discounts root stake against alpha stake when
// computing a peer's effective stake.
const effectiveRootWeight = 0.18

// Peer is an addressable network participant.
type Peer struct {
	UID     int
	Hotkey  string
	Address string // http base URL of the peer's axon, empty when not served
}

// Registry is the read-only identity/stake surface consumed by the
// validator's sampler and the miner's admission policy.
type Registry interface {
	KnownPeers() []Peer
	StakeOf(hotkey string) float64
	HasValidatorPermit(hotkey string) bool
	IsRegistered(hotkey string) bool
}

// MetagraphRegistry implements Registry over the latest metagraph snapshot.
// Update replaces the snapshot wholesale; readers see a consistent view.
type MetagraphRegistry struct {
	mu sync.RWMutex

	peers   []Peer
	stake   map[string]float64
	permits map[string]bool
}

func NewMetagraphRegistry() *MetagraphRegistry {
	return &MetagraphRegistry{
		stake:   make(map[string]float64),
		permits: make(map[string]bool),
	}
}

// Update replaces the registry contents from a fresh metagraph.
func (r *MetagraphRegistry) Update(mg *kami.SubnetMetagraph) {
	peers := make([]Peer, 0, len(mg.Hotkeys))
	stake := make(map[string]float64, len(mg.Hotkeys))
	permits := make(map[string]bool, len(mg.Hotkeys))

	for uid, hotkey := range mg.Hotkeys {
		p := Peer{UID: uid, Hotkey: hotkey}
		if uid < len(mg.Axons) {
			axon := mg.Axons[uid]
			if axon.IP != "" && axon.Port > 0 {
				p.Address = fmt.Sprintf("http://%s:%d", axon.IP, axon.Port)
			}
		}
		peers = append(peers, p)

		if uid < len(mg.AlphaStake) && uid < len(mg.TaoStake) {
			stake[hotkey] = EffectiveStake(mg.AlphaStake[uid], mg.TaoStake[uid])
		}
		if uid < len(mg.ValidatorPermit) {
			permits[hotkey] = mg.ValidatorPermit[uid]
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers = peers
	r.stake = stake
	r.permits = permits
}

// KnownPeers returns every registered peer. Peers without a served axon have
// an empty Address; the sampler skips those.
func (r *MetagraphRegistry) KnownPeers() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, len(r.peers))
	copy(out, r.peers)
	return out
}

func (r *MetagraphRegistry) StakeOf(hotkey string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stake[hotkey]
}

func (r *MetagraphRegistry) HasValidatorPermit(hotkey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.permits[hotkey]
}

func (r *MetagraphRegistry) IsRegistered(hotkey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.stake[hotkey]
	if ok {
		return true
	}
	for _, p := range r.peers {
		if p.Hotkey == hotkey {
			return true
		}
	}
	return false
}

// EffectiveStake combines alpha stake with discounted root stake.
func EffectiveStake(alphaStake, rootStake float64) float64 {
	return alphaStake + rootStake*effectiveRootWeight
}
