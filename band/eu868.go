package band

import "github.com/pkg/errors"

// eu868RX1DataRateTable is the RX1 data-rate lookup for the EU868 band:
// row is the uplink DR, column is the join-accept's RX1DROffset.
var eu868RX1DataRateTable = [][]uint8{
	{0, 0, 0, 0, 0, 0},
	{1, 0, 0, 0, 0, 0},
	{2, 1, 0, 0, 0, 0},
	{3, 2, 1, 0, 0, 0},
	{4, 3, 2, 1, 0, 0},
	{5, 4, 3, 2, 1, 0},
}

func eu868MaxPayload(dr uint8) int {
	switch {
	case dr <= 2:
		return 59
	case dr == 3:
		return 123
	default:
		return 250
	}
}

var eu868DataRates = []DataRate{
	{SF: 12, BW: 125000},
	{SF: 11, BW: 125000},
	{SF: 10, BW: 125000},
	{SF: 9, BW: 125000},
	{SF: 8, BW: 125000},
	{SF: 7, BW: 125000},
	{SF: 7, BW: 250000},
}

func eu868Channels() []Channel {
	return []Channel{
		{Frequency: 868100000, MinDR: 0, MaxDR: 5, Enabled: true},
		{Frequency: 868300000, MinDR: 0, MaxDR: 5, Enabled: true},
		{Frequency: 868500000, MinDR: 0, MaxDR: 5, Enabled: true},
	}
}

// EU868 is the 863-870 MHz European ISM band.
type EU868 struct {
	base
}

// NewEU868 returns the EU868 band adapter. rng drives PickChannel.
func NewEU868(rng RandomSource) *EU868 {
	return &EU868{base: base{
		rng:   rng,
		minDR: 0,
		maxDR: 7,
		defaults: Defaults{
			RX2Frequency:     869525000,
			RX2DataRate:      0,
			RX1DataRateTable: eu868RX1DataRateTable,
		},
		payload:   eu868MaxPayload,
		nChannels: eu868Channels,
		dataRates: eu868DataRates,
	}}
}

// ProcessCFList appends up to 5 channels described by a 16-byte CFList
// block: five little-endian 3-byte frequencies (Hz / 100) followed by a
// reserved byte. A zero frequency entry is skipped, matching the
// original firmware's treatment of unused CFList slots.
func (e *EU868) ProcessCFList(chans []Channel, cfList []byte) ([]Channel, error) {
	if len(cfList) != 16 {
		return nil, errors.Errorf("band: CFList must be exactly 16 bytes, got %d", len(cfList))
	}

	out := chans
	for i := 0; i < 5; i++ {
		b := cfList[i*3 : i*3+3]
		freq := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
		if freq == 0 {
			continue
		}
		out = append(out, Channel{
			Frequency: freq * 100,
			MinDR:     0,
			MaxDR:     5,
			Enabled:   true,
		})
	}
	return out, nil
}
