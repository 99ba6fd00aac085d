package mac

import (
	"time"

	"github.com/jia200x/gnrc-lorawan"
)

// Request implements spec.md §4.4's MCPS request: builds, encrypts and
// transmits a data uplink and returns StatusDeferred. The outcome is
// reported asynchronously via Dispatcher.MCPSConfirm, and any downlink
// payload received in response via Dispatcher.MCPSIndication.
func (m *MAC) Request(reqType RequestType, port uint8, dr uint8, payload []byte) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Activation == ActivationNone {
		return StatusError(NotConnected)
	}
	if !m.acquireLocked() {
		return StatusError(Busy)
	}
	if port < 1 || port > 223 {
		m.releaseLocked()
		return StatusError(Invalid)
	}
	if !m.cfg.Band.ValidateDR(dr) {
		m.releaseLocked()
		return StatusError(Invalid)
	}
	// MaxPayload bounds the whole MACPayload: FHDR (7 bytes), FOpts,
	// FPort (1 byte) and FRMPayload.
	if 8+m.fopts.Len()+len(payload) > m.cfg.Band.MaxPayload(dr) {
		m.releaseLocked()
		return StatusError(MsgTooBig)
	}

	fopts := m.fopts.Build()
	fctrl, err := lorawan.NewFCtrl(false, false, m.ackRequested, false, uint8(len(fopts)))
	if err != nil {
		m.releaseLocked()
		return StatusError(MsgTooBig)
	}
	m.ackRequested = false

	mp := &lorawan.MACPayload{
		FHDR: lorawan.FHDR{
			DevAddr: m.session.DevAddr,
			FCtrl:   fctrl,
			FCnt:    uint16(m.session.FCntUp),
			FOpts:   fopts,
		},
		FPort:      &port,
		FRMPayload: payload,
	}
	p := lorawan.PHYPayload{
		MHDR:       lorawan.NewMHDR(dataUpMType(reqType), lorawan.LoRaWANR1),
		MACPayload: mp,
	}

	key := mp.EncryptionKey(m.session.NwkSKey, m.session.AppSKey)
	if err := p.EncryptFRMPayload(m.cfg.Cipher, key, m.session.DevAddr, m.session.FCntUp, lorawan.Uplink); err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}
	if err := p.SetDataMIC(m.cfg.Cipher, m.session.NwkSKey, m.session.DevAddr, m.session.FCntUp, lorawan.Uplink); err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}
	frame, err := p.MarshalBinary()
	if err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}

	if err := m.sendLocked(frame, dr, false); err != nil {
		m.releaseLocked()
		return StatusError(Invalid)
	}

	m.kind = txKindData
	m.waitingForAck = reqType == Confirmed
	m.nbTrials = defaultRetx - 1
	m.pendingUplinkDR = dr

	return StatusDeferred
}

func dataUpMType(reqType RequestType) lorawan.MType {
	if reqType == Confirmed {
		return lorawan.ConfirmedDataUp
	}
	return lorawan.UnconfirmedDataUp
}

// handleDownlinkLocked processes a received downlink frame against the
// in-flight uplink transaction, per spec.md §4.4 and §4.7's validation
// pipeline. Any rejection drops the frame silently and is treated
// identically to receiving nothing at all.
func (m *MAC) handleDownlinkLocked(data []byte) {
	var p lorawan.PHYPayload
	if err := p.UnmarshalBinary(data); err != nil {
		m.onDownlinkOutcomeLocked(false)
		return
	}

	mtype := p.MHDR.MType()
	if mtype != lorawan.UnconfirmedDataDown && mtype != lorawan.ConfirmedDataDown {
		m.onDownlinkOutcomeLocked(false)
		return
	}
	if err := p.UnmarshalMACPayload(); err != nil {
		m.onDownlinkOutcomeLocked(false)
		return
	}
	mp := p.MACPayload.(*lorawan.MACPayload)

	if mp.FHDR.DevAddr != m.session.DevAddr {
		m.onDownlinkOutcomeLocked(false)
		return
	}
	if mp.FPort != nil && *mp.FPort == 0 && mp.FHDR.FCtrl.FOptsLen() > 0 {
		m.onDownlinkOutcomeLocked(false)
		return
	}

	candidate, ok := lorawan.ReconstructFCnt(m.session.FCntDown, mp.FHDR.FCnt, lorawan.MaxFCntGap)
	if !ok {
		m.onDownlinkOutcomeLocked(false)
		return
	}
	valid, err := p.ValidateDataMIC(m.cfg.Cipher, m.session.NwkSKey, m.session.DevAddr, candidate, lorawan.Downlink)
	if err != nil || !valid {
		m.onDownlinkOutcomeLocked(false)
		return
	}

	key := mp.EncryptionKey(m.session.NwkSKey, m.session.AppSKey)
	pt, err := lorawan.EncryptPayload(m.cfg.Cipher, key, m.session.DevAddr, candidate, lorawan.Downlink, mp.FRMPayload)
	if err != nil {
		m.onDownlinkOutcomeLocked(false)
		return
	}

	m.session.FCntDown = candidate

	if mp.FPort != nil && *mp.FPort == 0 {
		ans, err := m.fopts.Process(pt)
		if err != nil {
			m.log.WithError(err).Warn("mac: malformed port-0 FOpts")
		}
		m.reportLinkCheckLocked(ans)
	} else {
		ans, err := m.fopts.Process(mp.FHDR.FOpts)
		if err != nil {
			m.log.WithError(err).Warn("mac: malformed FOpts")
		}
		m.reportLinkCheckLocked(ans)
		if mp.FPort != nil {
			confirmed := mtype == lorawan.ConfirmedDataDown
			m.cfg.Dispatcher.MCPSIndication(MCPSIndication{Port: *mp.FPort, Data: pt, Confirmed: confirmed})
		}
	}

	if mtype == lorawan.ConfirmedDataDown {
		m.ackRequested = true
	}

	m.onDownlinkOutcomeLocked(mp.FHDR.FCtrl.ACK())
}

// reportLinkCheckLocked raises an MLMEConfirm for a received
// LinkCheckAns, per spec.md §4.8. ans is nil when the downlink's FOpts
// carried no LinkCheckAns, in which case there is nothing to report.
func (m *MAC) reportLinkCheckLocked(ans *LinkCheckAns) {
	if ans == nil {
		return
	}
	m.cfg.Dispatcher.MLMEConfirm(MLMEConfirm{
		Type:         MLMELinkCheck,
		Status:       StatusSuccess,
		Margin:       ans.Margin,
		GatewayCount: ans.GatewayCount,
	})
}

// onDownlinkOutcomeLocked finalizes or retries the in-flight uplink
// transaction. Unconfirmed uplinks always conclude with SUCCESS once the
// reception cycle completes; confirmed uplinks need an ACK bit, and retry
// if this round didn't carry one, per spec.md §4.4.
func (m *MAC) onDownlinkOutcomeLocked(ack bool) {
	if !m.waitingForAck || ack {
		m.finalizeUplinkLocked(StatusSuccess)
		return
	}
	if m.retryLocked() {
		return
	}
	m.finalizeUplinkLocked(StatusError(TimedOut))
}

// retryLocked schedules a retransmission of the in-flight confirmed
// uplink if attempts remain, per spec.md §4.4. It returns false once the
// attempt budget (defaultRetx total transmissions) is exhausted.
func (m *MAC) retryLocked() bool {
	if m.nbTrials <= 0 {
		return false
	}
	m.nbTrials--
	jitter := time.Duration(1000+int(m.cfg.RNG.Uint32()&retryJitterMask)) * time.Millisecond
	m.state = stateRetryWait
	m.cfg.Timer.Set(jitter)
	return true
}

// finalizeUplinkLocked ends the in-flight data transaction. The uplink
// frame counter advances exactly once here, regardless of how many
// retries preceded it, per spec.md §4.4.
func (m *MAC) finalizeUplinkLocked(status Status) {
	m.session.FCntUp++
	m.releaseLocked()
	m.cfg.Dispatcher.MCPSConfirm(MCPSConfirm{Status: status})
}
