// Package wire defines the envelope and payload encoding shared by every
// HTTP JSON body the agent server exchanges with clients and peers.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Version is a three-part protocol version. Two envelopes are
// compatible iff their Major fields match.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// CurrentVersion is the version this build of the agent emits and the
// newest Major it will accept from a peer.
var CurrentVersion = Version{Major: 1, Minor: 0, Patch: 0}

// Envelope wraps every payload exchanged over the wire.
type Envelope struct {
	Version     Version         `json:"version"`
	MessageID   string          `json:"message_id,omitempty"`
	TimestampUs int64           `json:"timestamp_us"`
	Payload     json.RawMessage `json:"payload"`
}

// ErrUnsupportedVersion is returned by Decode when the envelope's Major
// version exceeds CurrentVersion.Major.
type ErrUnsupportedVersion struct {
	Got Version
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("wire: unsupported envelope version %d.%d.%d", e.Got.Major, e.Got.Minor, e.Got.Patch)
}

// Wrap builds an Envelope around payload, stamping a message id (if the
// caller didn't supply one) and the current timestamp.
func Wrap(payload any, messageID string) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal payload: %w", err)
	}
	if messageID == "" {
		messageID = uuid.NewString()
	}
	return &Envelope{
		Version:     CurrentVersion,
		MessageID:   messageID,
		TimestampUs: time.Now().UnixMicro(),
		Payload:     raw,
	}, nil
}

// Encode serializes env as JSON bytes.
func Encode(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// Decode parses bytes into an Envelope and checks version compatibility.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: decode envelope: %w", err)
	}
	if env.Version.Major > CurrentVersion.Major {
		return nil, &ErrUnsupportedVersion{Got: env.Version}
	}
	return &env, nil
}

// Unwrap decodes env.Payload into v.
func Unwrap(env *Envelope, v any) error {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("wire: unmarshal payload: %w", err)
	}
	return nil
}
