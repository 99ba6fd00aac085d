package band

import "github.com/pkg/errors"

// us915RX1DataRateTable is the RX1 data-rate lookup for the US915 band.
var us915RX1DataRateTable = [][]uint8{
	{10, 9, 8, 8},
	{11, 10, 9, 8},
	{12, 11, 10, 9},
	{13, 12, 11, 10},
}

func us915MaxPayload(dr uint8) int {
	switch {
	case dr <= 3:
		return 123
	default:
		return 250
	}
}

var us915DataRates = []DataRate{
	{SF: 10, BW: 125000},
	{SF: 9, BW: 125000},
	{SF: 8, BW: 125000},
	{SF: 7, BW: 125000},
	{SF: 8, BW: 500000},
}

func us915Channels() []Channel {
	chans := make([]Channel, 0, 64)
	for i := 0; i < 64; i++ {
		chans = append(chans, Channel{
			Frequency: 902300000 + uint32(i)*200000,
			MinDR:     0,
			MaxDR:     3,
			Enabled:   true,
		})
	}
	return chans
}

// US915 is the 902-928 MHz US ISM band. It demonstrates that band.Band
// is not specific to EU868; the MAC engine's tests exercise EU868 only.
type US915 struct {
	base
}

// NewUS915 returns the US915 band adapter. rng drives PickChannel.
func NewUS915(rng RandomSource) *US915 {
	return &US915{base: base{
		rng:   rng,
		minDR: 0,
		maxDR: 4,
		defaults: Defaults{
			RX2Frequency:     923300000,
			RX2DataRate:      8,
			RX1DataRateTable: us915RX1DataRateTable,
		},
		payload:   us915MaxPayload,
		nChannels: us915Channels,
		dataRates: us915DataRates,
	}}
}

// ProcessCFList is not part of the US915 fixed-channel plan; the region
// instead selects a sub-band via a MAC command this module does not
// implement (out of scope, see DESIGN.md).
func (u *US915) ProcessCFList(chans []Channel, cfList []byte) ([]Channel, error) {
	return nil, errors.New("band: US915 does not support CFList channel augmentation")
}
