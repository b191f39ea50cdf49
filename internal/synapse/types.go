// Package synapse implements the validator-to-miner transport: a signing
// HTTP client for batch dispatch and the server middleware miners mount in
// front of their handlers.
package synapse

import (
	"fmt"
	"time"
)

const (
	SignatureHeader = "x-signature"
	HotkeyHeader    = "x-hotkey"
	TimestampHeader = "x-timestamp"
	PriorityHeader  = "x-priority"

	BatchRoute = "/flight-batch"
)

// AuthHeaders carries the identity material attached to every dispatch.
type AuthHeaders struct {
	Hotkey    string
	Timestamp string
	Signature string
}

// SignedMessage is the canonical string both sides sign and verify. The
// timestamp is in seconds, not milliseconds.
func SignedMessage(hotkey, timestamp string) string {
	return fmt.Sprintf("%s.%s.cheapest flight wins, please verify me!", hotkey, timestamp)
}

type Config struct {
	ClientTimeout time.Duration
	RetryMax      int
	RetryWait     time.Duration
}
