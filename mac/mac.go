// Package mac implements the stateful LoRaWAN Class A MAC sublayer: a
// three-state reception-window state machine, duty-cycle budgeting, the
// MCPS and MLME service access points, and the glue between them. It
// depends on package lorawan for frame encoding and on package band for
// region-specific channel plans; everything else (radio, timer, RNG,
// the user SAP) is injected through Config.
package mac

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jia200x/gnrc-lorawan"
)

// rx1SafetyTimeout is the fixed window RX1 stays open after its timer
// fires before the engine falls back to RX2, per spec.md §4.3.
const rx1SafetyTimeout = 1000 * time.Millisecond

// joinAcceptDelay1 is the RX1 delay used while unjoined, before a
// session-level RXDelay has been negotiated.
const joinAcceptDelay1 = 5 * time.Second

// defaultRetx is the number of transmission attempts a confirmed uplink
// gets before the engine gives up with TIMED_OUT.
const defaultRetx = 3

// joinJitterMask bounds the random sub-second delay before a join
// request is transmitted, per spec.md §4.5.
const joinJitterMask = 0x1FFFFF

// retryJitterMask bounds the random component of the confirmed-uplink
// retry spacing, per spec.md §4.4.
const retryJitterMask = 0x7FF

// state is the MAC's reception-window state, per spec.md §4.3.
type state int

// The four states of the Class A reception cycle.
const (
	stateIdle state = iota
	stateTX
	stateRX1
	stateRX2
	// stateRetryWait is not one of spec.md §4.3's four states; it covers
	// the confirmed-uplink retry delay ("re-arm a timer ... and re-send
	// the same frame", spec.md §4.4), a wait with no radio activity that
	// the four-state table doesn't otherwise have a home for.
	stateRetryWait
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "IDLE"
	case stateTX:
		return "TX"
	case stateRX1:
		return "RX1"
	case stateRX2:
		return "RX2"
	case stateRetryWait:
		return "RETRY_WAIT"
	default:
		return "UNKNOWN"
	}
}

// txKind tags what kind of frame is in flight, so OnRXDone and the
// retry/timeout paths know which SAP's confirm to emit.
type txKind int

const (
	txKindNone txKind = iota
	txKindJoin
	txKindData
)

// MAC is the opaque MAC descriptor. All of its exported methods take it
// by pointer receiver; zero values are not valid, use New.
type MAC struct {
	cfg Config
	log *logrus.Entry

	session *Session
	backoff *Backoff
	fopts   FOptsProcessor

	// mu guards every field below, giving the single-task model in
	// spec.md §5 a safe "busy" check even if an embedder delivers radio
	// and user-request events from more than one goroutine.
	mu        sync.Mutex
	state     state
	busy      bool
	rx1Opened bool

	kind     txKind
	txFrame  []byte
	lastDR   uint8
	lastFreq uint32

	// confirmed-uplink retry tracking
	nbTrials        int
	waitingForAck   bool
	ackRequested    bool
	pendingUplinkDR uint8

	// join tracking
	joinDevEUI   lorawan.EUI64
	joinAppEUI   lorawan.EUI64
	joinAppKey   lorawan.AES128Key
	joinDevNonce [2]byte
}

// New constructs a MAC from its capability record and an initial
// channel table seeded from cfg.Band.
func New(cfg Config) *MAC {
	m := &MAC{
		cfg:     cfg,
		log:     logrus.WithField("component", "mac"),
		session: NewSession(cfg.Band.InitChannels()),
		backoff: NewBackoff(),
	}
	return m
}

// Reset aborts any in-flight transaction, clears session state and
// re-seeds the channel table, per spec.md §4.5's RESET request. It is
// accepted unconditionally and never fails.
func (m *MAC) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg.Timer.Stop()
	m.cfg.Radio.Sleep()
	m.session.Reset(m.cfg.Band.InitChannels())
	m.backoff.Reset()
	m.fopts = FOptsProcessor{}
	m.state = stateIdle
	m.busy = false
	m.kind = txKindNone
	m.txFrame = nil
}

// HourTick advances the duty-cycle budget by one hour, per spec.md §4.6.
func (m *MAC) HourTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backoff.Tick()
}

// acquireLocked sets busy and returns whether it succeeded; callers must hold
// mu.
func (m *MAC) acquireLocked() bool {
	if m.busy {
		return false
	}
	m.busy = true
	return true
}

// releaseLocked clears busy and returns to IDLE; callers must hold mu.
func (m *MAC) releaseLocked() {
	m.busy = false
	m.state = stateIdle
	m.kind = txKindNone
}

// sendLocked configures the radio for TX on a region-picked channel, hands it
// frame, subtracts its time-on-air from the duty-cycle budget when
// consumeBudget is true (joins only, per spec.md §4.6), and transitions
// to TX. Callers must hold mu.
func (m *MAC) sendLocked(frame []byte, dr uint8, consumeBudget bool) error {
	chans := m.session.Channels
	ch, err := m.cfg.Band.PickChannel(chans)
	if err != nil {
		return err
	}
	dataRate, err := m.cfg.Band.DataRate(dr)
	if err != nil {
		return err
	}

	m.cfg.Radio.SetFrequency(ch.Frequency)
	m.cfg.Radio.SetSF(dataRate.SF)
	m.cfg.Radio.SetBW(dataRate.BW)
	if err := m.cfg.Radio.Send(frame); err != nil {
		return err
	}

	toa, err := lorawan.TimeOnAir(len(frame), dr, 5)
	if err != nil {
		return err
	}
	if consumeBudget {
		m.backoff.Consume(int64(toa))
	}

	m.txFrame = frame
	m.lastDR = dr
	m.lastFreq = ch.Frequency
	m.state = stateTX
	return nil
}
