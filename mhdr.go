package lorawan

import "fmt"

// MType represents the message type of a PHYPayload.
type MType byte

// Message types as defined by the LoRaWAN R1.0 specification. Note that the
// MType occupies bits [7:5] of the MHDR; the numeric values below are
// already shifted into place so that MHDR = MType ^ Major.
const (
	JoinRequest         MType = 0 << 5
	JoinAccept          MType = 1 << 5
	UnconfirmedDataUp   MType = 2 << 5
	UnconfirmedDataDown MType = 3 << 5
	ConfirmedDataUp     MType = 4 << 5
	ConfirmedDataDown   MType = 5 << 5
	RejoinRequest       MType = 6 << 5
	Proprietary         MType = 7 << 5
)

// String implements fmt.Stringer.
func (m MType) String() string {
	switch m {
	case JoinRequest:
		return "JoinRequest"
	case JoinAccept:
		return "JoinAccept"
	case UnconfirmedDataUp:
		return "UnconfirmedDataUp"
	case UnconfirmedDataDown:
		return "UnconfirmedDataDown"
	case ConfirmedDataUp:
		return "ConfirmedDataUp"
	case ConfirmedDataDown:
		return "ConfirmedDataDown"
	case RejoinRequest:
		return "RejoinRequest"
	case Proprietary:
		return "Proprietary"
	default:
		return fmt.Sprintf("MType(%d)", byte(m))
	}
}

// Major defines the major version of a PHYPayload.
type Major byte

// The only major version this codec supports.
const (
	LoRaWANR1 Major = 0
)

// MHDR represents the one-byte MAC header: mtype in bits [7:5], major
// (always 0 in this codec) in bits [1:0].
type MHDR byte

// NewMHDR returns a new MHDR for the given message type and major version.
func NewMHDR(mtype MType, major Major) MHDR {
	return MHDR(byte(mtype) | byte(major))
}

// MType returns the message type carried by the header.
func (h MHDR) MType() MType {
	return MType(h) & MType(0xE0)
}

// Major returns the major version carried by the header.
func (h MHDR) Major() Major {
	return Major(h) & Major(0x03)
}

// MarshalBinary encodes the header to its single-byte wire representation.
func (h MHDR) MarshalBinary() ([]byte, error) {
	return []byte{byte(h)}, nil
}

// UnmarshalBinary decodes the header from its single-byte wire representation.
func (h *MHDR) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return fmt.Errorf("lorawan: MHDR expects exactly 1 byte, got %d", len(data))
	}
	*h = MHDR(data[0])
	return nil
}
