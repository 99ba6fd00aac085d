// Package band implements the channel and region adapter contract: the
// set of default channels, data-rate table, RX1 offset lookup and max
// payload sizes a Class A end device needs to drive a particular ISM
// band. It is the "external collaborator" the MAC engine depends on for
// everything region-specific, so the engine itself carries no frequency
// or duty-cycle plan for any one region.
package band

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Channel is a single uplink channel: a frequency and the inclusive
// range of data rates allowed on it.
type Channel struct {
	Frequency uint32 // Hz
	MinDR     uint8
	MaxDR     uint8
	Enabled   bool
}

// DataRate describes one entry of a region's data-rate table (spreading
// factor and bandwidth, as programmed onto the radio by SetDR).
type DataRate struct {
	SF uint8
	BW uint32 // Hz
}

// Defaults bundles the fixed, non-channel-table parameters of a region:
// its RX2 window and the RX1 data-rate offset lookup.
type Defaults struct {
	RX2Frequency uint32
	RX2DataRate  uint8
	// RX1DataRateTable[dr][offset] gives the RX1 data rate for an uplink
	// sent at dr with the join-accept's RX1DROffset.
	RX1DataRateTable [][]uint8
}

// Band is the contract spec.md §4.7 places on the channel & region
// adapter (C4). The MAC engine holds one Band and never branches on
// region internally.
type Band interface {
	// InitChannels returns a new slice holding the region's default
	// uplink channels.
	InitChannels() []Channel

	// PickChannel selects a frequency from the enabled entries of chans.
	// Selection is implementation-defined; the default bands pick
	// uniformly at random via the injected RandomSource.
	PickChannel(chans []Channel) (Channel, error)

	// ValidateDR reports whether dr is usable in this region.
	ValidateDR(dr uint8) bool

	// MaxPayload returns the maximum MACPayload size (FHDR + FOpts +
	// FPort + FRMPayload) permitted at dr.
	MaxPayload(dr uint8) int

	// RX1DROffset returns the data rate to use in the RX1 window given
	// the data rate of the triggering uplink and the join-accept's
	// RX1DROffset.
	RX1DROffset(lastDR uint8, offset uint8) (uint8, error)

	// DataRate returns the SF/BW pair dr maps to, so the caller can
	// program the radio (spec.md §4.7's set_dr).
	DataRate(dr uint8) (DataRate, error)

	// ProcessCFList appends up to 5 extra channels described by a
	// 16-byte CFList block to chans and returns the augmented slice.
	ProcessCFList(chans []Channel, cfList []byte) ([]Channel, error)

	// Defaults returns the region's fixed RX2 and RX1-offset parameters.
	Defaults() Defaults
}

// RandomSource is the randomness collaborator PickChannel uses to stay
// deterministic under test; production callers wire *rand.Rand seeded
// from a real entropy source, tests wire a fixed-sequence fake.
type RandomSource interface {
	Intn(n int) int
}

// defaultRandomSource adapts the standard library's math/rand to
// RandomSource.
type defaultRandomSource struct {
	r *rand.Rand
}

// NewDefaultRandomSource returns a RandomSource seeded from seed.
func NewDefaultRandomSource(seed int64) RandomSource {
	return defaultRandomSource{r: rand.New(rand.NewSource(seed))}
}

func (d defaultRandomSource) Intn(n int) int { return d.r.Intn(n) }

// base provides the PickChannel, ValidateDR and RX1DROffset
// implementations shared by every concrete band; only the channel plan,
// max-payload tiers and RX2 defaults differ per region.
type base struct {
	rng       RandomSource
	minDR     uint8
	maxDR     uint8
	defaults  Defaults
	payload   func(dr uint8) int
	nChannels func() []Channel
	dataRates []DataRate
}

func (b base) DataRate(dr uint8) (DataRate, error) {
	if int(dr) >= len(b.dataRates) {
		return DataRate{}, errors.Errorf("band: no data rate table entry for DR%d", dr)
	}
	return b.dataRates[dr], nil
}

func (b base) InitChannels() []Channel {
	return b.nChannels()
}

func (b base) PickChannel(chans []Channel) (Channel, error) {
	enabled := make([]Channel, 0, len(chans))
	for _, c := range chans {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) == 0 {
		return Channel{}, errors.New("band: no enabled channel to pick from")
	}
	return enabled[b.rng.Intn(len(enabled))], nil
}

func (b base) ValidateDR(dr uint8) bool {
	return dr >= b.minDR && dr <= b.maxDR
}

func (b base) MaxPayload(dr uint8) int {
	return b.payload(dr)
}

func (b base) Defaults() Defaults {
	return b.defaults
}

func (b base) RX1DROffset(lastDR uint8, offset uint8) (uint8, error) {
	table := b.defaults.RX1DataRateTable
	if int(lastDR) >= len(table) {
		return 0, errors.Errorf("band: no RX1 data rate table row for DR%d", lastDR)
	}
	row := table[lastDR]
	if int(offset) >= len(row) {
		return 0, errors.Errorf("band: RX1DROffset %d out of range for DR%d", offset, lastDR)
	}
	return row[offset], nil
}
