package mac

import (
	"time"

	"github.com/jia200x/gnrc-lorawan"
	"github.com/jia200x/gnrc-lorawan/band"
)

// Radio is the HAL contract the MAC drives a LoRa transceiver through.
// Implementations deliver the On* events back into the MAC from
// whatever task/goroutine the lower layer runs on.
type Radio interface {
	SetCR(cr uint8)
	SetSyncWord(word uint8)
	SetFrequency(hz uint32)
	SetIQInvert(invert bool)
	SetRXSymbolTimeout(symbols uint16)
	SetSF(sf uint8)
	SetBW(hz uint32)
	RXOn()
	Send(frame []byte) error
	Sleep()
}

// TimerService is the HAL contract for the single one-shot timer the MAC
// uses to drive reception windows, retry backoff and join jitter. Set
// replaces any previously armed timer. An implementation targeting a
// real MCU is expected to apply its own drift-compensation factor to d
// before arming the hardware timer.
type TimerService interface {
	Set(d time.Duration)
	Stop()
	Sleep(d time.Duration)
}

// RandomSource is the MAC's source of randomness for dev-nonce
// generation, join-request jitter and confirmed-uplink retry spacing.
type RandomSource interface {
	Uint32() uint32
}

// Config is the capability record passed to New: every external
// collaborator the MAC engine depends on, injected rather than reached
// for as package-level state.
type Config struct {
	Radio      Radio
	Timer      TimerService
	RNG        RandomSource
	Cipher     lorawan.Cipher
	Dispatcher Dispatcher
	Band       band.Band
}
