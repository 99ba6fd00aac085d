package lorawan

import (
	"fmt"
)

// JoinRequestPayload is the MACPayload of a join-request frame:
// AppEUI(8) | DevEUI(8) | DevNonce(2), all little-endian.
type JoinRequestPayload struct {
	AppEUI   EUI64
	DevEUI   EUI64
	DevNonce [2]byte
}

// MarshalBinary implements Payload. AppEUI and DevEUI are carried
// little-endian on the wire, same as they are stored in EUI64.
func (p JoinRequestPayload) MarshalBinary() ([]byte, error) {
	out := make([]byte, 18)
	copy(out[0:8], p.AppEUI[:])
	copy(out[8:16], p.DevEUI[:])
	copy(out[16:18], p.DevNonce[:])
	return out, nil
}

// UnmarshalBinary decodes a join-request MACPayload.
func (p *JoinRequestPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 18 {
		return fmt.Errorf("lorawan: JoinRequestPayload expects exactly 18 bytes, got %d", len(data))
	}
	copy(p.AppEUI[:], data[0:8])
	copy(p.DevEUI[:], data[8:16])
	copy(p.DevNonce[:], data[16:18])
	return nil
}

// CFListSize is the size in bytes of an optional channel-frequency list
// appended to a join-accept frame.
const CFListSize = 16

// JoinAcceptPayload is the MACPayload of a join-accept frame:
// AppNonce(3) | NetID(3) | DevAddr(4) | DLSettings(1) | RXDelay(1) |
// [CFList(16)], little-endian.
type JoinAcceptPayload struct {
	AppNonce   [3]byte
	NetID      NetID
	DevAddr    DevAddr
	DLSettings byte
	RXDelay    byte
	CFList     []byte // nil, or exactly CFListSize bytes
}

// DLSettingsRX2DR returns the RX2 data-rate encoded in bits [3:0].
func (p JoinAcceptPayload) DLSettingsRX2DR() uint8 {
	return p.DLSettings & 0x0F
}

// DLSettingsRX1DROffset returns the RX1 data-rate offset encoded in bits [6:4].
func (p JoinAcceptPayload) DLSettingsRX1DROffset() uint8 {
	return (p.DLSettings >> 4) & 0x07
}

// MarshalBinary implements Payload.
func (p JoinAcceptPayload) MarshalBinary() ([]byte, error) {
	if p.CFList != nil && len(p.CFList) != CFListSize {
		return nil, fmt.Errorf("lorawan: CFList must be exactly %d bytes, got %d", CFListSize, len(p.CFList))
	}

	out := make([]byte, 0, 12+CFListSize)
	out = append(out, p.AppNonce[:]...)
	netID, err := p.NetID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, netID...)
	devAddr, err := p.DevAddr.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, devAddr...)
	out = append(out, p.DLSettings, p.RXDelay)
	if p.CFList != nil {
		out = append(out, p.CFList...)
	}
	return out, nil
}

// UnmarshalBinary decodes a join-accept MACPayload. data must be 12 bytes
// (no CFList) or 12+CFListSize bytes (with CFList).
func (p *JoinAcceptPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 12 && len(data) != 12+CFListSize {
		return fmt.Errorf("lorawan: JoinAcceptPayload expects 12 or %d bytes, got %d", 12+CFListSize, len(data))
	}
	copy(p.AppNonce[:], data[0:3])
	if err := p.NetID.UnmarshalBinary(data[3:6]); err != nil {
		return err
	}
	if err := p.DevAddr.UnmarshalBinary(data[6:10]); err != nil {
		return err
	}
	p.DLSettings = data[10]
	p.RXDelay = data[11]
	if len(data) == 12+CFListSize {
		p.CFList = make([]byte, CFListSize)
		copy(p.CFList, data[12:])
	} else {
		p.CFList = nil
	}
	return nil
}

// MACPayload is the MACPayload of a data frame (uplink or downlink):
// FHDR | [FPort | FRMPayload]. FRMPayload holds ciphertext until
// decrypted by the caller with the key selected by FPort.
type MACPayload struct {
	FHDR       FHDR
	FPort      *uint8
	FRMPayload []byte
}

// MarshalBinary implements Payload.
func (p MACPayload) MarshalBinary() ([]byte, error) {
	out, err := p.FHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if p.FPort != nil {
		out = append(out, *p.FPort)
		out = append(out, p.FRMPayload...)
	}
	return out, nil
}

// UnmarshalBinary decodes a data MACPayload. The FOpts length embedded in
// FHDR.FCtrl determines where FOpts ends and FPort/FRMPayload begin.
func (p *MACPayload) UnmarshalBinary(data []byte) error {
	if err := p.FHDR.UnmarshalBinary(data); err != nil {
		return err
	}

	rest := data[p.FHDR.Len():]
	if len(rest) == 0 {
		p.FPort = nil
		p.FRMPayload = nil
		return nil
	}

	port := rest[0]
	p.FPort = &port
	if len(rest) > 1 {
		p.FRMPayload = make([]byte, len(rest)-1)
		copy(p.FRMPayload, rest[1:])
	} else {
		p.FRMPayload = nil
	}
	return nil
}

// EncryptionKey selects NwkSKey (FPort == 0) or AppSKey (FPort != 0) to
// encrypt/decrypt this MACPayload's FRMPayload, per spec.md §4.1.
func (p MACPayload) EncryptionKey(nwkSKey, appSKey AES128Key) AES128Key {
	if p.FPort == nil || *p.FPort == 0 {
		return nwkSKey
	}
	return appSKey
}
