package lorawan

import (
	"encoding/binary"
	"fmt"
)

// DevAddr represents a 32-bit device address, little-endian on the wire.
type DevAddr [4]byte

// Uint32 returns the device address as a host-order integer.
func (a DevAddr) Uint32() uint32 {
	return binary.LittleEndian.Uint32(a[:])
}

// MarshalBinary encodes the device address little-endian.
func (a DevAddr) MarshalBinary() ([]byte, error) {
	b := make([]byte, 4)
	copy(b, a[:])
	return b, nil
}

// UnmarshalBinary decodes a little-endian device address.
func (a *DevAddr) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("lorawan: DevAddr expects exactly 4 bytes, got %d", len(data))
	}
	copy(a[:], data)
	return nil
}

// FCtrl represents the frame-control byte of a data frame header.
type FCtrl byte

// FCtrl bit positions, identical for uplink and downlink; FPending has
// the downlink-only meaning documented on its accessor.
const (
	fctrlADR        = 1 << 7
	fctrlADRACKReq  = 1 << 6
	fctrlACK        = 1 << 5
	fctrlFPending   = 1 << 4
	fctrlFOptsMask  = 0x0F
	fctrlFOptsLimit = 15
)

// NewFCtrl builds an FCtrl byte. fOptsLen must be in [0,15].
func NewFCtrl(adr, adrAckReq, ack, fPending bool, fOptsLen uint8) (FCtrl, error) {
	if fOptsLen > fctrlFOptsLimit {
		return 0, fmt.Errorf("lorawan: fOptsLen must be <= %d", fctrlFOptsLimit)
	}
	var c FCtrl
	if adr {
		c |= fctrlADR
	}
	if adrAckReq {
		c |= fctrlADRACKReq
	}
	if ack {
		c |= fctrlACK
	}
	if fPending {
		c |= fctrlFPending
	}
	return c | FCtrl(fOptsLen), nil
}

// ADR reports the adaptive-data-rate bit.
func (c FCtrl) ADR() bool { return c&fctrlADR != 0 }

// ADRACKReq reports the ADR-ACK-request bit.
func (c FCtrl) ADRACKReq() bool { return c&fctrlADRACKReq != 0 }

// ACK reports the acknowledgment bit.
func (c FCtrl) ACK() bool { return c&fctrlACK != 0 }

// FPending reports the frame-pending bit. Downlink-only; meaningless on
// uplink frames.
func (c FCtrl) FPending() bool { return c&fctrlFPending != 0 }

// FOptsLen returns the number of FOpts bytes carried by the frame header.
func (c FCtrl) FOptsLen() uint8 { return uint8(c) & fctrlFOptsMask }

// FHDR represents the frame header of a data frame (uplink or downlink):
// DevAddr(4) | FCtrl(1) | FCnt(2) | FOpts(0..15), all little-endian.
type FHDR struct {
	DevAddr DevAddr
	FCtrl   FCtrl
	FCnt    uint16
	FOpts   []byte
}

// MarshalBinary encodes the frame header.
func (h FHDR) MarshalBinary() ([]byte, error) {
	if len(h.FOpts) > fctrlFOptsLimit {
		return nil, fmt.Errorf("lorawan: FOpts must be <= %d bytes", fctrlFOptsLimit)
	}
	out := make([]byte, 0, 7+len(h.FOpts))
	out = append(out, h.DevAddr[:]...)
	out = append(out, byte(h.FCtrl)&^fctrlFOptsMask|FCtrl(len(h.FOpts)).FOptsLen())
	fcnt := make([]byte, 2)
	binary.LittleEndian.PutUint16(fcnt, h.FCnt)
	out = append(out, fcnt...)
	out = append(out, h.FOpts...)
	return out, nil
}

// UnmarshalBinary decodes a frame header. The FOpts length is taken from
// FCtrl's low nibble; data must contain at least that many trailing bytes.
func (h *FHDR) UnmarshalBinary(data []byte) error {
	if len(data) < 7 {
		return fmt.Errorf("lorawan: FHDR expects at least 7 bytes, got %d", len(data))
	}
	if err := h.DevAddr.UnmarshalBinary(data[0:4]); err != nil {
		return err
	}
	h.FCtrl = FCtrl(data[4])
	h.FCnt = binary.LittleEndian.Uint16(data[5:7])

	n := int(h.FCtrl.FOptsLen())
	if len(data) < 7+n {
		return fmt.Errorf("lorawan: FHDR declares %d FOpts bytes but only %d remain", n, len(data)-7)
	}
	if n > 0 {
		h.FOpts = make([]byte, n)
		copy(h.FOpts, data[7:7+n])
	} else {
		h.FOpts = nil
	}
	return nil
}

// Len returns the encoded length of the frame header.
func (h FHDR) Len() int {
	return 7 + len(h.FOpts)
}
