package mac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jia200x/gnrc-lorawan"
	"github.com/jia200x/gnrc-lorawan/band"
)

func TestSessionReset(t *testing.T) {
	Convey("Given a session with activation state", t, func() {
		chans := []band.Channel{{Frequency: 868100000, Enabled: true}}
		s := NewSession(chans)
		s.Activation = ActivationOTAA
		s.DevAddr = lorawan.DevAddr{1, 2, 3, 4}
		s.FCntUp = 42
		s.FCntDown = 7

		Convey("When Reset is called", func() {
			s.Reset(chans)

			Convey("Then activation, keys and counters are cleared", func() {
				So(s.Activation, ShouldEqual, ActivationNone)
				So(s.DevAddr, ShouldEqual, lorawan.DevAddr{})
				So(s.FCntUp, ShouldEqual, 0)
				So(s.FCntDown, ShouldEqual, 0)
				So(s.RXDelay, ShouldEqual, 1)
			})

			Convey("Then the channel table is re-seeded from the default", func() {
				So(s.Channels, ShouldResemble, chans)
			})
		})
	})
}

func TestSessionSetMIBRefusesOTAA(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := NewSession(nil)

		Convey("When SET MIBActivationMethod=OTAA is requested", func() {
			err := s.SetMIB(MIBActivationMethod, ActivationOTAA)

			Convey("Then it is refused", func() {
				So(err, ShouldNotBeNil)
				So(s.Activation, ShouldEqual, ActivationNone)
			})
		})

		Convey("When SET MIBActivationMethod=ABP is requested", func() {
			err := s.SetMIB(MIBActivationMethod, ActivationABP)

			Convey("Then it succeeds", func() {
				So(err, ShouldBeNil)
				So(s.Activation, ShouldEqual, ActivationABP)
			})
		})
	})
}

func TestSessionSetGetMIBDevAddr(t *testing.T) {
	Convey("Given a fresh session", t, func() {
		s := NewSession(nil)
		addr := lorawan.DevAddr{0xAA, 0xBB, 0xCC, 0xDD}

		Convey("When DevAddr is set then read back", func() {
			So(s.SetMIB(MIBDevAddr, addr), ShouldBeNil)
			v, err := s.GetMIB(MIBDevAddr)

			Convey("Then it round-trips", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, addr)
			})
		})

		Convey("When set with the wrong value type", func() {
			err := s.SetMIB(MIBDevAddr, "not a DevAddr")

			Convey("Then it is rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
