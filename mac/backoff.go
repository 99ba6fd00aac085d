package mac

// backoffState is the duty-cycle budget's current phase.
type backoffState uint8

// The three duty-cycle phases.
const (
	backoffB1 backoffState = iota
	backoffB2
	backoffB3
)

// backoffReloadHours[state] is the number of hour-ticks a phase lasts
// before rolling to the next.
var backoffReloadHours = [3]uint8{1, 10, 24}

// backoffBudgetMicros[state] is the time-on-air budget, in microseconds,
// a phase reloads to.
var backoffBudgetMicros = [3]int64{36_000_000, 36_000_000, 8_700_000}

// Backoff tracks the three-phase duty-cycle budget described in
// spec.md §4.6, packed as state<<5|counter to mirror the original
// firmware's single-byte representation.
type Backoff struct {
	packed uint8
	budget int64
}

// NewBackoff returns a freshly reset Backoff, starting in phase B1.
func NewBackoff() *Backoff {
	b := &Backoff{}
	b.Reset()
	return b
}

// Reset returns the budget to phase B1 with a full allowance.
func (b *Backoff) Reset() {
	b.packed = uint8(backoffB1)<<5 | backoffReloadHours[backoffB1]
	b.budget = backoffBudgetMicros[backoffB1]
}

func (b *Backoff) state() backoffState { return backoffState(b.packed >> 5) }
func (b *Backoff) counter() uint8      { return b.packed & 0x1F }

// Tick advances the budget by one "hour tick". On counter underflow it
// rolls to the next phase and reloads the budget; B3 is terminal.
func (b *Backoff) Tick() {
	if b.counter() == 0 {
		next := b.state() + 1
		if next > backoffB3 {
			next = backoffB3
		}
		b.packed = uint8(next)<<5 | backoffReloadHours[next]
		b.budget = backoffBudgetMicros[next]
		return
	}
	b.packed = uint8(b.state())<<5 | (b.counter() - 1)
}

// Consume subtracts toaMicros from the remaining budget. The budget is
// allowed to go negative; callers gate further joins on Budget() >= 0.
func (b *Backoff) Consume(toaMicros int64) {
	b.budget -= toaMicros
}

// Budget returns the remaining time-on-air allowance in microseconds.
func (b *Backoff) Budget() int64 {
	return b.budget
}
