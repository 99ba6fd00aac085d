package lorawan

import (
	"encoding/hex"
	"fmt"
)

// NetID represents the 24-bit network identifier carried in a join-accept.
type NetID [3]byte

// Type returns the NetID type (the top 3 bits of the first byte).
func (n NetID) Type() int {
	return int(n[0] >> 5)
}

// String implements fmt.Stringer.
func (n NetID) String() string {
	return hex.EncodeToString(n[:])
}

// MarshalText implements encoding.TextMarshaler.
func (n NetID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NetID) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	if len(b) != len(n) {
		return fmt.Errorf("lorawan: NetID expects exactly %d bytes, got %d", len(n), len(b))
	}
	copy(n[:], b)
	return nil
}

// MarshalBinary encodes the NetID as it appears on the wire (and in the
// session-key derivation buffer): the three raw bytes, unreordered.
func (n NetID) MarshalBinary() ([]byte, error) {
	out := make([]byte, len(n))
	copy(out, n[:])
	return out, nil
}

// UnmarshalBinary decodes a wire-order NetID.
func (n *NetID) UnmarshalBinary(data []byte) error {
	if len(data) != len(n) {
		return fmt.Errorf("lorawan: NetID expects exactly %d bytes, got %d", len(n), len(data))
	}
	copy(n[:], data)
	return nil
}
