package lorawan

import "fmt"

// timeOnAirCoefficients is the K table from the integer time-on-air
// formula: for each DR in [0,5], {n0, off, c1, c2}.
var timeOnAirCoefficients = [6][4]int{
	{0, 1, 5, 5},
	{0, 1, 4, 5},
	{1, 5, 5, 5},
	{1, 4, 5, 4},
	{1, 3, 4, 4},
	{1, 2, 4, 3},
}

// TimeOnAir returns the airtime in microseconds of a LoRa PHY frame of the
// given payload size, data rate and coding rate, using a pure integer
// formula (no floating point) so results are reproducible across
// platforms. dr must be in [0,6]; DR6 reuses the DR5 table. cr is CR+4,
// i.e. 5 for a 4/5 coding rate.
func TimeOnAir(payload int, dr uint8, cr int) (int, error) {
	if dr > 6 {
		return 0, fmt.Errorf("lorawan: TimeOnAir: invalid data rate %d", dr)
	}
	if payload < 0 {
		return 0, fmt.Errorf("lorawan: TimeOnAir: negative payload size %d", payload)
	}

	tableDR := dr
	if tableDR == 6 {
		tableDR = 5
	}
	k := timeOnAirCoefficients[tableDR]
	n0, off, c1, c2 := k[0], k[1], k[2], k[3]

	tSym := 1 << (15 - tableDR)
	tPreamble := (tSym << 3) + (tSym << 2) + (tSym >> 2)

	var nSym int
	if payload < off {
		nSym = 8 + n0*cr
	} else {
		p := payload - off
		period := c1 + c2
		cycle := p / period
		pos := p % period
		extra := n0 + 2*cycle + 1
		if pos > c1-1 {
			extra++
		}
		nSym = 8 + extra*cr
	}

	return tPreamble + tSym*nSym, nil
}
