package lorawan

import (
	"encoding"
	"encoding/hex"
	"fmt"
)

// Payload is implemented by every MACPayload variant a PHYPayload can carry.
type Payload interface {
	encoding.BinaryMarshaler
}

// DataPayload wraps an opaque byte slice: FRMPayload on a data frame, or the
// encrypted/decrypted body of a join-accept before it is parsed further.
type DataPayload struct {
	Bytes []byte
}

// MarshalBinary implements Payload.
func (p DataPayload) MarshalBinary() ([]byte, error) {
	return p.Bytes, nil
}

// EUI64 represents an IEEE EUI-64 identifier (AppEUI/DevEUI).
type EUI64 [8]byte

// String implements fmt.Stringer.
func (e EUI64) String() string {
	return hex.EncodeToString(e[:])
}

// MarshalText implements encoding.TextMarshaler.
func (e EUI64) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EUI64) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(e) {
		return fmt.Errorf("lorawan: EUI64 expects exactly %d bytes, got %d", len(e), len(b))
	}
	copy(e[:], b)
	return nil
}

// AES128Key represents a 128-bit AES key (AppKey, NwkSKey or AppSKey).
type AES128Key [16]byte

// String implements fmt.Stringer.
func (k AES128Key) String() string {
	return hex.EncodeToString(k[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k AES128Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AES128Key) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(k) {
		return fmt.Errorf("lorawan: AES128Key expects exactly %d bytes, got %d", len(k), len(b))
	}
	copy(k[:], b)
	return nil
}

// MIC represents the 4-byte message integrity code.
type MIC [4]byte

// String implements fmt.Stringer.
func (m MIC) String() string {
	return hex.EncodeToString(m[:])
}
