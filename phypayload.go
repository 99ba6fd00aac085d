package lorawan

import "fmt"

// PHYPayload represents a full LoRaWAN frame: MHDR | MACPayload | MIC.
type PHYPayload struct {
	MHDR       MHDR
	MACPayload Payload
	MIC        MIC
}

// marshalWithoutMIC returns MHDR || MACPayload, the portion of the frame
// that the MIC is computed over.
func (p PHYPayload) marshalWithoutMIC() ([]byte, error) {
	mhdr, err := p.MHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if p.MACPayload == nil {
		return mhdr, nil
	}
	mac, err := p.MACPayload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(mhdr, mac...), nil
}

// MarshalBinary encodes the full frame, MIC included.
func (p PHYPayload) MarshalBinary() ([]byte, error) {
	out, err := p.marshalWithoutMIC()
	if err != nil {
		return nil, err
	}
	return append(out, p.MIC[:]...), nil
}

// UnmarshalBinary decodes the MHDR and MIC of a frame and leaves
// MACPayload as a raw DataPayload; callers that know the frame's
// direction and have the session keys available parse it further with
// UnmarshalJoinRequest / UnmarshalJoinAccept / UnmarshalMACPayload.
func (p *PHYPayload) UnmarshalBinary(data []byte) error {
	if len(data) < 1+4 {
		return fmt.Errorf("lorawan: frame too short: %d bytes", len(data))
	}
	if err := p.MHDR.UnmarshalBinary(data[0:1]); err != nil {
		return err
	}
	copy(p.MIC[:], data[len(data)-4:])
	p.MACPayload = DataPayload{Bytes: data[1 : len(data)-4]}
	return nil
}

// UnmarshalJoinRequest replaces a raw MACPayload with a parsed
// *JoinRequestPayload.
func (p *PHYPayload) UnmarshalJoinRequest() error {
	raw, ok := p.MACPayload.(DataPayload)
	if !ok {
		return fmt.Errorf("lorawan: MACPayload is not a raw DataPayload")
	}
	jr := &JoinRequestPayload{}
	if err := jr.UnmarshalBinary(raw.Bytes); err != nil {
		return err
	}
	p.MACPayload = jr
	return nil
}

// UnmarshalJoinAccept replaces a raw, already-decrypted MACPayload with a
// parsed *JoinAcceptPayload.
func (p *PHYPayload) UnmarshalJoinAccept() error {
	raw, ok := p.MACPayload.(DataPayload)
	if !ok {
		return fmt.Errorf("lorawan: MACPayload is not a raw DataPayload")
	}
	ja := &JoinAcceptPayload{}
	if err := ja.UnmarshalBinary(raw.Bytes); err != nil {
		return err
	}
	p.MACPayload = ja
	return nil
}

// UnmarshalMACPayload replaces a raw MACPayload with a parsed *MACPayload
// (a data frame's FHDR/FPort/FRMPayload, FRMPayload still ciphertext).
func (p *PHYPayload) UnmarshalMACPayload() error {
	raw, ok := p.MACPayload.(DataPayload)
	if !ok {
		return fmt.Errorf("lorawan: MACPayload is not a raw DataPayload")
	}
	mp := &MACPayload{}
	if err := mp.UnmarshalBinary(raw.Bytes); err != nil {
		return err
	}
	p.MACPayload = mp
	return nil
}

// SetJoinRequestMIC computes and sets the MIC for a join-request frame.
func (p *PHYPayload) SetJoinRequestMIC(c Cipher, appKey AES128Key) error {
	msg, err := p.marshalWithoutMIC()
	if err != nil {
		return err
	}
	mic, err := ComputeJoinMIC(c, appKey, msg)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// ValidateJoinAcceptMIC validates the MIC of an already-decrypted
// join-accept frame.
func (p PHYPayload) ValidateJoinAcceptMIC(c Cipher, appKey AES128Key) (bool, error) {
	msg, err := p.marshalWithoutMIC()
	if err != nil {
		return false, err
	}
	mic, err := ComputeJoinMIC(c, appKey, msg)
	if err != nil {
		return false, err
	}
	return mic == p.MIC, nil
}

// SetDataMIC computes and sets the MIC for an uplink or downlink data
// frame.
func (p *PHYPayload) SetDataMIC(c Cipher, nwkSKey AES128Key, devAddr DevAddr, fcnt uint32, dir Direction) error {
	msg, err := p.marshalWithoutMIC()
	if err != nil {
		return err
	}
	mic, err := ComputeMIC(c, nwkSKey, devAddr, fcnt, dir, msg)
	if err != nil {
		return err
	}
	p.MIC = mic
	return nil
}

// ValidateDataMIC validates the MIC of a data frame.
func (p PHYPayload) ValidateDataMIC(c Cipher, nwkSKey AES128Key, devAddr DevAddr, fcnt uint32, dir Direction) (bool, error) {
	msg, err := p.marshalWithoutMIC()
	if err != nil {
		return false, err
	}
	mic, err := ComputeMIC(c, nwkSKey, devAddr, fcnt, dir, msg)
	if err != nil {
		return false, err
	}
	return mic == p.MIC, nil
}

// EncryptFRMPayload applies the FRMPayload keystream in place. The same
// call decrypts a received frame, since the cipher is an XOR keystream.
func (p *PHYPayload) EncryptFRMPayload(c Cipher, key AES128Key, devAddr DevAddr, fcnt uint32, dir Direction) error {
	mp, ok := p.MACPayload.(*MACPayload)
	if !ok {
		return fmt.Errorf("lorawan: MACPayload is not a *MACPayload")
	}
	if len(mp.FRMPayload) == 0 {
		return nil
	}
	out, err := EncryptPayload(c, key, devAddr, fcnt, dir, mp.FRMPayload)
	if err != nil {
		return err
	}
	mp.FRMPayload = out
	return nil
}
