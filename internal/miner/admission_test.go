package miner

import (
	"testing"

	"github.com/skylane-labs/skylane/internal/config"
	"github.com/skylane-labs/skylane/internal/registry"
)

// fakeRegistry is a canned Registry for admission tests.
type fakeRegistry struct {
	registered map[string]bool
	permits    map[string]bool
	stake      map[string]float64
}

func (f *fakeRegistry) KnownPeers() []registry.Peer          { return nil }
func (f *fakeRegistry) StakeOf(hotkey string) float64        { return f.stake[hotkey] }
func (f *fakeRegistry) HasValidatorPermit(hotkey string) bool { return f.permits[hotkey] }
func (f *fakeRegistry) IsRegistered(hotkey string) bool      { return f.registered[hotkey] }

func admissionMiner(cfg config.BlacklistEnvConfig) *Miner {
	return &Miner{
		Registry: &fakeRegistry{
			registered: map[string]bool{"hk-validator": true, "hk-miner": true},
			permits:    map[string]bool{"hk-validator": true},
			stake:      map[string]float64{"hk-validator": 1000, "hk-miner": 10},
		},
		cfg: &config.MinerEnvConfig{BlacklistEnvConfig: cfg},
	}
}

func TestAdmit(t *testing.T) {
	m := admissionMiner(config.BlacklistEnvConfig{ForceValidatorPermit: true})

	t.Run("missing hotkey", func(t *testing.T) {
		d := m.Admit("")
		if !d.Rejected || d.Reason != "Missing hotkey" {
			t.Fatalf("unexpected decision: %+v", d)
		}
	})

	t.Run("unknown hotkey", func(t *testing.T) {
		d := m.Admit("hk-stranger")
		if !d.Rejected || d.Reason != "Unrecognized hotkey" {
			t.Fatalf("unexpected decision: %+v", d)
		}
	})

	t.Run("registered without permit", func(t *testing.T) {
		d := m.Admit("hk-miner")
		if !d.Rejected || d.Reason != "Non-validator hotkey" {
			t.Fatalf("unexpected decision: %+v", d)
		}
	})

	t.Run("registered validator", func(t *testing.T) {
		d := m.Admit("hk-validator")
		if d.Rejected {
			t.Fatalf("validator must be admitted: %+v", d)
		}
		if d.Reason != "Hotkey recognized!" {
			t.Fatalf("unexpected reason: %q", d.Reason)
		}
	})
}

func TestAdmit_PolicyToggles(t *testing.T) {
	t.Run("allow non-registered", func(t *testing.T) {
		m := admissionMiner(config.BlacklistEnvConfig{AllowNonRegistered: true})
		if d := m.Admit("hk-stranger"); d.Rejected {
			t.Fatalf("stranger must be admitted with the policy relaxed: %+v", d)
		}
	})

	t.Run("permit enforcement off", func(t *testing.T) {
		m := admissionMiner(config.BlacklistEnvConfig{})
		if d := m.Admit("hk-miner"); d.Rejected {
			t.Fatalf("registered miner must be admitted without permit enforcement: %+v", d)
		}
	})
}

func TestPriority(t *testing.T) {
	m := admissionMiner(config.BlacklistEnvConfig{})

	if got := m.Priority("hk-validator"); got != 1000 {
		t.Fatalf("expected stake 1000, got %f", got)
	}
	if got := m.Priority("hk-stranger"); got != 0 {
		t.Fatalf("unknown hotkey must have zero priority, got %f", got)
	}
	if got := m.Priority(""); got != 0 {
		t.Fatalf("empty hotkey must have zero priority, got %f", got)
	}
}
