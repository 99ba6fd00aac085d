package mac

import (
	"time"

	"github.com/jia200x/gnrc-lorawan"
)

// JoinRequest implements spec.md §4.5's MLME JOIN request: builds and
// transmits a 23-byte join-request frame and returns StatusDeferred.
// The outcome is reported asynchronously via Dispatcher.MLMEConfirm.
func (m *MAC) JoinRequest(devEUI, appEUI lorawan.EUI64, appKey lorawan.AES128Key, dr uint8) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Activation != ActivationNone {
		return StatusError(NotConnected)
	}
	if m.backoff.Budget() < 0 {
		return StatusError(QuotaExceeded)
	}
	if !m.acquireLocked() {
		return StatusError(Busy)
	}
	if !m.cfg.Band.ValidateDR(dr) {
		m.releaseLocked()
		return StatusError(Invalid)
	}

	var nonce [2]byte
	r := m.cfg.RNG.Uint32()
	nonce[0] = byte(r)
	nonce[1] = byte(r >> 8)

	jr := &lorawan.JoinRequestPayload{AppEUI: appEUI, DevEUI: devEUI, DevNonce: nonce}
	p := lorawan.PHYPayload{
		MHDR:       lorawan.NewMHDR(lorawan.JoinRequest, lorawan.LoRaWANR1),
		MACPayload: jr,
	}
	if err := p.SetJoinRequestMIC(m.cfg.Cipher, appKey); err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}
	frame, err := p.MarshalBinary()
	if err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}

	jitter := time.Duration(m.cfg.RNG.Uint32()&joinJitterMask) * time.Microsecond
	m.cfg.Timer.Sleep(jitter)

	if err := m.sendLocked(frame, dr, true); err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}

	m.kind = txKindJoin
	m.joinDevEUI = devEUI
	m.joinAppEUI = appEUI
	m.joinAppKey = appKey
	m.joinDevNonce = nonce

	return StatusDeferred
}

// handleJoinAcceptLocked processes a received join-accept frame. Any
// failure emits an MLME JOIN confirm with BAD_MESSAGE, per spec.md §4.5.
func (m *MAC) handleJoinAcceptLocked(data []byte) {
	defer m.releaseLocked()

	fail := func() {
		m.cfg.Dispatcher.MLMEConfirm(MLMEConfirm{Type: MLMEJoin, Status: StatusError(BadMessage)})
	}

	if len(data) != 17 && len(data) != 33 {
		fail()
		return
	}

	mhdr := lorawan.MHDR(data[0])
	ct := data[1:]
	pt, err := lorawan.DecryptJoinAccept(m.cfg.Cipher, m.joinAppKey, ct)
	if err != nil {
		fail()
		return
	}

	p := lorawan.PHYPayload{MHDR: mhdr, MACPayload: lorawan.DataPayload{Bytes: pt[:len(pt)-4]}}
	copy(p.MIC[:], pt[len(pt)-4:])

	ok, err := p.ValidateJoinAcceptMIC(m.cfg.Cipher, m.joinAppKey)
	if err != nil || !ok {
		fail()
		return
	}
	if err := p.UnmarshalJoinAccept(); err != nil {
		fail()
		return
	}
	ja := p.MACPayload.(*lorawan.JoinAcceptPayload)

	nwkSKey, appSKey, err := lorawan.DeriveSessionKeys(m.cfg.Cipher, m.joinAppKey, ja.AppNonce, ja.NetID, m.joinDevNonce)
	if err != nil {
		fail()
		return
	}

	m.session.NetID = ja.NetID
	m.session.DevAddr = ja.DevAddr
	m.session.NwkSKey = nwkSKey
	m.session.AppSKey = appSKey
	m.session.DLSettings = ja.DLSettings
	m.session.RX2DR = ja.DLSettingsRX2DR()
	m.session.RXDelay = ja.RXDelay
	if m.session.RXDelay == 0 {
		m.session.RXDelay = 1
	}
	m.session.FCntUp = 0
	m.session.FCntDown = 0
	m.session.Activation = ActivationOTAA

	if len(ja.CFList) > 0 {
		chans, err := m.cfg.Band.ProcessCFList(m.session.Channels, ja.CFList)
		if err == nil {
			m.session.Channels = chans
		}
	}

	m.cfg.Dispatcher.MLMEConfirm(MLMEConfirm{Type: MLMEJoin, Status: StatusSuccess})
}

// LinkCheckRequest implements spec.md §4.5's MLME LINK_CHECK request: it
// marks the option pending so it piggybacks on the next uplink's FOpts,
// and always returns DEFERRED (the matching confirm arrives when a
// LinkCheckAns is received).
func (m *MAC) LinkCheckRequest() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fopts.RequestLinkCheck()
	return StatusDeferred
}

// SetMIB implements spec.md §4.5's MLME SET request.
func (m *MAC) SetMIB(attr MIBAttribute, value interface{}) Status {
	if err := m.session.SetMIB(attr, value); err != nil {
		return StatusError(Invalid)
	}
	return StatusSuccess
}

// GetMIB implements spec.md §4.5's MLME GET request.
func (m *MAC) GetMIB(attr MIBAttribute) (interface{}, Status) {
	v, err := m.session.GetMIB(attr)
	if err != nil {
		return nil, StatusError(Invalid)
	}
	return v, StatusSuccess
}

// ResetRequest implements spec.md §4.5's MLME RESET request: accepted
// unconditionally, it aborts any in-flight transaction and clears
// session state.
func (m *MAC) ResetRequest() Status {
	m.Reset()
	return StatusSuccess
}
