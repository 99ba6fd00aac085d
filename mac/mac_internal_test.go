package mac

import (
	"time"

	"github.com/jia200x/gnrc-lorawan"
	"github.com/jia200x/gnrc-lorawan/band"
)

// fakeRadio is a Radio test double that records the last configured
// parameters and every call, without touching any actual hardware.
type fakeRadio struct {
	freq       uint32
	sf         uint8
	bw         uint32
	cr         uint8
	syncWord   uint8
	iqInvert   bool
	rxTimeout  uint16
	sent       [][]byte
	rxOnCalls  int
	sleepCalls int
	sendErr    error
}

func (r *fakeRadio) SetCR(cr uint8)                     { r.cr = cr }
func (r *fakeRadio) SetSyncWord(word uint8)             { r.syncWord = word }
func (r *fakeRadio) SetFrequency(hz uint32)             { r.freq = hz }
func (r *fakeRadio) SetIQInvert(invert bool)            { r.iqInvert = invert }
func (r *fakeRadio) SetRXSymbolTimeout(symbols uint16)  { r.rxTimeout = symbols }
func (r *fakeRadio) SetSF(sf uint8)                     { r.sf = sf }
func (r *fakeRadio) SetBW(hz uint32)                    { r.bw = hz }
func (r *fakeRadio) RXOn()                              { r.rxOnCalls++ }
func (r *fakeRadio) Sleep()                             { r.sleepCalls++ }
func (r *fakeRadio) Send(frame []byte) error {
	r.sent = append(r.sent, frame)
	return r.sendErr
}

// fakeTimer is a TimerService test double that records armed durations
// instead of actually scheduling anything; tests drive OnTimerFired by
// hand.
type fakeTimer struct {
	armed      []time.Duration
	stopCalls  int
	sleptTotal time.Duration
}

func (t *fakeTimer) Set(d time.Duration)   { t.armed = append(t.armed, d) }
func (t *fakeTimer) Stop()                 { t.stopCalls++ }
func (t *fakeTimer) Sleep(d time.Duration) { t.sleptTotal += d }

// fakeRNG is a RandomSource test double returning a fixed sequence,
// repeating the last value once exhausted.
type fakeRNG struct {
	seq []uint32
	i   int
}

func (r *fakeRNG) Uint32() uint32 {
	if len(r.seq) == 0 {
		return 0
	}
	if r.i >= len(r.seq) {
		return r.seq[len(r.seq)-1]
	}
	v := r.seq[r.i]
	r.i++
	return v
}

// fakeDispatcher is a Dispatcher test double that records every confirm
// and indication it is handed.
type fakeDispatcher struct {
	mcpsConfirms     []MCPSConfirm
	mcpsIndications  []MCPSIndication
	mlmeConfirms     []MLMEConfirm
	mlmeIndications  []MLMEIndication
}

func (d *fakeDispatcher) MCPSConfirm(c MCPSConfirm)         { d.mcpsConfirms = append(d.mcpsConfirms, c) }
func (d *fakeDispatcher) MCPSIndication(i MCPSIndication)   { d.mcpsIndications = append(d.mcpsIndications, i) }
func (d *fakeDispatcher) MLMEConfirm(c MLMEConfirm)         { d.mlmeConfirms = append(d.mlmeConfirms, c) }
func (d *fakeDispatcher) MLMEIndication(i MLMEIndication)   { d.mlmeIndications = append(d.mlmeIndications, i) }

// seqRandomSource is a band.RandomSource test double cycling through a
// fixed sequence of Intn results, for deterministic channel selection.
type seqRandomSource struct {
	seq []int
	i   int
}

func (r *seqRandomSource) Intn(n int) int {
	if len(r.seq) == 0 {
		return 0
	}
	v := r.seq[r.i%len(r.seq)]
	r.i++
	return v
}

// newTestMAC builds a MAC wired to an EU868 band and the fake
// collaborators above, ready for JoinRequest/Request calls in tests.
func newTestMAC() (*MAC, *fakeRadio, *fakeTimer, *fakeRNG, *fakeDispatcher) {
	radio := &fakeRadio{}
	timer := &fakeTimer{}
	rng := &fakeRNG{seq: []uint32{0x1234}}
	disp := &fakeDispatcher{}
	b := band.NewEU868(&seqRandomSource{seq: []int{0}})

	m := New(Config{
		Radio:      radio,
		Timer:      timer,
		RNG:        rng,
		Cipher:     lorawan.AES128Cipher{},
		Dispatcher: disp,
		Band:       b,
	})
	return m, radio, timer, rng, disp
}
