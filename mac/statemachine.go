package mac

import "time"

// This file implements spec.md §4.3's reception-window state machine as
// one explicit switch per event, with exhaustive transition handling.
// An event arriving in a state it has no transition for is a programmer
// error in the embedding stack (a radio/timer event delivered out of
// order) and panics, mirroring the original firmware's assert(false) in
// its default branch.

// OnTXDone is the radio's "transmission complete" event. It moves the
// MAC from TX to RX1: put the radio to sleep and arm the timer that
// opens the RX1 window after rx_delay (or JOIN_DELAY1 while unjoined).
func (m *MAC) OnTXDone() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateTX:
		m.cfg.Radio.Sleep()

		delay := joinAcceptDelay1
		if m.kind == txKindData {
			d := time.Duration(m.session.RXDelay) * time.Second
			if d == 0 {
				d = time.Second
			}
			delay = d
		}

		m.state = stateRX1
		m.rx1Opened = false
		m.cfg.Timer.Set(delay)
	default:
		panic("mac: OnTXDone delivered outside state TX")
	}
}

// OnTimerFired is the single timer's expiry event. In RX1 it means two
// different things depending on whether the window has already been
// opened: the first firing opens the RX1 window and arms the 1s safety
// timeout; the second (the safety timeout itself) falls back to RX2. In
// RX2 it means the window closed with nothing received.
func (m *MAC) OnTimerFired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateRX1:
		if !m.rx1Opened {
			m.rx1Opened = true
			m.openRX1Locked()
			return
		}
		m.openRX2Locked()
	case stateRX2:
		m.onNoRXLocked()
	case stateRetryWait:
		if err := m.sendLocked(m.txFrame, m.pendingUplinkDR, false); err != nil {
			m.finalizeUplinkLocked(StatusError(Invalid))
		}
	default:
		panic("mac: OnTimerFired delivered outside state RX1, RX2 or RETRY_WAIT")
	}
}

// openRX1Locked configures the radio for the RX1 window and arms the
// safety timer. If the region's RX1 data rate lookup fails, it falls
// straight through to RX2 rather than leaving the radio unconfigured.
func (m *MAC) openRX1Locked() {
	offset := m.rx1OffsetLocked()
	dr, err := m.cfg.Band.RX1DROffset(m.lastDR, offset)
	if err != nil {
		m.log.WithError(err).Warn("mac: RX1 data rate lookup failed, falling back to RX2")
		m.openRX2Locked()
		return
	}
	dataRate, err := m.cfg.Band.DataRate(dr)
	if err != nil {
		m.log.WithError(err).Warn("mac: RX1 data rate unsupported, falling back to RX2")
		m.openRX2Locked()
		return
	}

	m.cfg.Radio.SetFrequency(m.lastFreq)
	m.cfg.Radio.SetSF(dataRate.SF)
	m.cfg.Radio.SetBW(dataRate.BW)
	m.cfg.Radio.RXOn()
	m.cfg.Timer.Set(rx1SafetyTimeout)
}

// openRX2Locked configures the radio for the region's fixed RX2 window.
func (m *MAC) openRX2Locked() {
	defaults := m.cfg.Band.Defaults()
	dataRate, err := m.cfg.Band.DataRate(m.session.RX2DR)
	if err != nil {
		dataRate, _ = m.cfg.Band.DataRate(defaults.RX2DataRate)
	}

	m.cfg.Radio.SetFrequency(defaults.RX2Frequency)
	m.cfg.Radio.SetSF(dataRate.SF)
	m.cfg.Radio.SetBW(dataRate.BW)
	m.cfg.Radio.RXOn()
	m.state = stateRX2
}

func (m *MAC) rx1OffsetLocked() uint8 {
	return (m.session.DLSettings >> 4) & 0x07
}

// OnRXDone is the radio's "frame received" event, valid from RX1 or
// RX2. The raw bytes are routed to the frame codec and then to whichever
// SAP the in-flight transaction belongs to.
func (m *MAC) OnRXDone(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateRX1, stateRX2:
		m.cfg.Timer.Stop()
		m.cfg.Radio.Sleep()

		switch m.kind {
		case txKindJoin:
			m.handleJoinAcceptLocked(data)
		case txKindData:
			m.handleDownlinkLocked(data)
		default:
			m.releaseLocked()
		}
	default:
		panic("mac: OnRXDone delivered outside state RX1 or RX2")
	}
}

// OnNoRX is the radio's "no frame detected within the window" event.
func (m *MAC) OnNoRX() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case stateRX1:
		m.openRX2Locked()
	case stateRX2:
		m.onNoRXLocked()
	default:
		panic("mac: OnNoRX delivered outside state RX1 or RX2")
	}
}

// onNoRXLocked finalizes a transaction that received nothing in either
// window: retries a confirmed uplink if attempts remain, otherwise
// reports the terminal outcome and releases the MAC.
func (m *MAC) onNoRXLocked() {
	m.cfg.Timer.Stop()
	m.cfg.Radio.Sleep()

	switch m.kind {
	case txKindJoin:
		m.releaseLocked()
		m.cfg.Dispatcher.MLMEConfirm(MLMEConfirm{Type: MLMEJoin, Status: StatusError(TimedOut)})
	case txKindData:
		m.onDownlinkOutcomeLocked(false)
	default:
		m.releaseLocked()
	}
}
