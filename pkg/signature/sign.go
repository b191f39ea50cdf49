package signature

import (
	"encoding/hex"
	"fmt"

	"github.com/ChainSafe/gossamer/lib/crypto/sr25519"
	"github.com/rs/zerolog/log"
	"github.com/vedhavyas/go-subkey"
)

// SubstrateNetworkId is the SS58 format of the generic substrate network.
const SubstrateNetworkId = 42

// Provider signs messages with a local sr25519 keypair. Nodes that keep
// their hotkey in-process use this instead of a signing sidecar.
type Provider struct {
	keypair *sr25519.Keypair
}

func NewProvider(keypair *sr25519.Keypair) (*Provider, error) {
	return &Provider{keypair: keypair}, nil
}

// Sign returns the sr25519 signature over message as 0x-prefixed hex.
func (p *Provider) Sign(message string) (string, error) {
	if p.keypair == nil {
		return "", fmt.Errorf("private key not initialized")
	}

	sig, err := p.keypair.Sign([]byte(message))
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign message")
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return "0x" + hex.EncodeToString(sig), nil
}

// Address returns the provider's SS58 address on the substrate network.
func (p *Provider) Address() string {
	if p.keypair == nil {
		return ""
	}
	return subkey.SS58Encode(p.keypair.Public().Encode(), SubstrateNetworkId)
}
