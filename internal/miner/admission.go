package miner

import (
	"github.com/rs/zerolog/log"
)

// Decision is the outcome of the admission policy for one caller. A reject
// carries a human-readable reason, never a raised error.
type Decision struct {
	Rejected bool
	Reason   string
}

const (
	reasonMissingHotkey = "Missing hotkey"
	reasonUnrecognized  = "Unrecognized hotkey"
	reasonNoPermit      = "Non-validator hotkey"
	reasonRecognized    = "Hotkey recognized!"
)

// Admit applies the blacklist policy to an incoming caller: unknown callers
// are rejected unless non-registered callers are allowed, and registered
// callers without a validator permit are rejected when permit enforcement
// is on.
func (m *Miner) Admit(callerHotkey string) Decision {
	if callerHotkey == "" {
		log.Warn().Msg("received a request without a hotkey")
		return Decision{Rejected: true, Reason: reasonMissingHotkey}
	}

	if !m.cfg.AllowNonRegistered && !m.Registry.IsRegistered(callerHotkey) {
		return Decision{Rejected: true, Reason: reasonUnrecognized}
	}

	if m.cfg.ForceValidatorPermit && !m.Registry.HasValidatorPermit(callerHotkey) {
		log.Warn().Str("hotkey", callerHotkey).Msg("blacklisting request from non-validator hotkey")
		return Decision{Rejected: true, Reason: reasonNoPermit}
	}

	return Decision{Reason: reasonRecognized}
}

// Priority returns the queueing hint for a caller: its current stake weight
// from the registry, or 0 for an unknown identity. Higher stake is served
// first by whatever queue sits above this core.
func (m *Miner) Priority(callerHotkey string) float64 {
	if callerHotkey == "" {
		return 0
	}
	return m.Registry.StakeOf(callerHotkey)
}
