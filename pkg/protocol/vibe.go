package protocol

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Vibe payloads implement anonymous matching with a commit-then-reveal
// exchange over the shared vibes topic. The union is discriminated by an
// explicit "type" field on the wire.

const (
	vibeTypeCommitment = "commitment"
	vibeTypeReveal     = "reveal"
)

var ErrUnknownVibeType = errors.New("unknown vibe payload type")

// VibePayload is one of VibeCommitment or VibeReveal.
type VibePayload interface {
	vibeType() string
}

// VibeCommitment publishes a hash commitment over a secret.
type VibeCommitment struct {
	VibeID     string `json:"vibeId"`
	Commitment string `json:"commitment"`
}

func (VibeCommitment) vibeType() string { return vibeTypeCommitment }

// VibeReveal discloses the secret behind an earlier commitment.
type VibeReveal struct {
	VibeID string `json:"vibeId"`
	Secret string `json:"secret"`
}

func (VibeReveal) vibeType() string { return vibeTypeReveal }

type vibeEnvelope struct {
	Type       string `json:"type"`
	VibeID     string `json:"vibeId"`
	Commitment string `json:"commitment,omitempty"`
	Secret     string `json:"secret,omitempty"`
}

// EncodeVibePayload serializes a vibe payload with its type discriminator.
func EncodeVibePayload(p VibePayload) ([]byte, error) {
	env := vibeEnvelope{Type: p.vibeType()}
	switch v := p.(type) {
	case VibeCommitment:
		env.VibeID = v.VibeID
		env.Commitment = v.Commitment
	case VibeReveal:
		env.VibeID = v.VibeID
		env.Secret = v.Secret
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownVibeType, p)
	}
	return json.Marshal(env)
}

// DecodeVibePayload parses a vibe payload, dispatching on the type field.
func DecodeVibePayload(data []byte) (VibePayload, error) {
	var env vibeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case vibeTypeCommitment:
		return VibeCommitment{VibeID: env.VibeID, Commitment: env.Commitment}, nil
	case vibeTypeReveal:
		return VibeReveal{VibeID: env.VibeID, Secret: env.Secret}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVibeType, env.Type)
	}
}

// CommitmentFor computes the hex BLAKE2b-256 commitment over a secret.
func CommitmentFor(secret string) string {
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifyCommitment reports whether a revealed secret matches a previously
// observed commitment.
func VerifyCommitment(commitment, secret string) bool {
	return commitment == CommitmentFor(secret)
}
