package lorawan

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// TestTimeOnAirReferenceTable checks toa(payload, dr, 5) against a table
// worked out by hand from the formula in the spec, for payload sizes and
// data rates chosen to exercise every branch (below-offset, cycle
// boundary, pos > c1-1 boundary).
func TestTimeOnAirReferenceTable(t *testing.T) {
	Convey("Given payload sizes 1, 13, 59, 123 and 250 across DR0..DR5", t, func() {
		table := map[uint8]map[int]int{
			0: {1: 827392, 13: 1155072, 59: 2629632, 123: 4759552, 250: 8855552},
			1: {1: 413696, 13: 577536, 59: 1478656, 123: 2625536, 250: 4919296},
			2: {1: 206848, 13: 288768, 59: 657408, 123: 1189888, 250: 2254848},
			3: {1: 103424, 13: 164864, 59: 369664, 123: 656384, 250: 1229824},
			4: {1: 51712, 13: 82432, 59: 205312, 123: 369152, 250: 686592},
			5: {1: 25856, 13: 46336, 59: 112896, 123: 205056, 250: 389376},
		}

		for dr, payloads := range table {
			dr := dr
			for payload, want := range payloads {
				payload, want := payload, want
				Convey("Then TimeOnAir matches the reference table", func() {
					got, err := TimeOnAir(payload, dr, 5)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, want)
				})
			}
		}
	})
}

func TestTimeOnAirDR6ReusesDR5(t *testing.T) {
	Convey("Given DR5 and DR6", t, func() {
		dr5, err := TimeOnAir(59, 5, 5)
		So(err, ShouldBeNil)
		dr6, err := TimeOnAir(59, 6, 5)
		So(err, ShouldBeNil)

		Convey("Then DR6 produces the same airtime as DR5", func() {
			So(dr6, ShouldEqual, dr5)
		})
	})
}

func TestTimeOnAirRejectsInvalidInput(t *testing.T) {
	Convey("Given an out-of-range data rate or a negative payload", t, func() {
		Convey("Then TimeOnAir returns an error", func() {
			_, err := TimeOnAir(10, 7, 5)
			So(err, ShouldNotBeNil)

			_, err = TimeOnAir(-1, 0, 5)
			So(err, ShouldNotBeNil)
		})
	})
}
