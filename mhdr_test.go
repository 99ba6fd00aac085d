package lorawan

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMType(t *testing.T) {
	Convey("Given a set of MType values", t, func() {
		tests := []struct {
			MType  MType
			String string
		}{
			{JoinRequest, "JoinRequest"},
			{JoinAccept, "JoinAccept"},
			{UnconfirmedDataUp, "UnconfirmedDataUp"},
			{UnconfirmedDataDown, "UnconfirmedDataDown"},
			{ConfirmedDataUp, "ConfirmedDataUp"},
			{ConfirmedDataDown, "ConfirmedDataDown"},
			{RejoinRequest, "RejoinRequest"},
			{Proprietary, "Proprietary"},
		}

		for _, test := range tests {
			test := test
			Convey("Then String returns "+test.String, func() {
				So(test.MType.String(), ShouldEqual, test.String)
			})
		}
	})
}

func TestMHDR(t *testing.T) {
	Convey("Given an MHDR", t, func() {
		h := NewMHDR(ConfirmedDataUp, LoRaWANR1)

		Convey("Then MType and Major are set correctly", func() {
			So(h.MType(), ShouldEqual, ConfirmedDataUp)
			So(h.Major(), ShouldEqual, LoRaWANR1)
		})

		Convey("Then MarshalBinary returns a single byte", func() {
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)
			So(b, ShouldResemble, []byte{byte(ConfirmedDataUp)})
		})

		Convey("Then UnmarshalBinary round-trips", func() {
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)

			var h2 MHDR
			So(h2.UnmarshalBinary(b), ShouldBeNil)
			So(h2, ShouldEqual, h)
		})

		Convey("Then UnmarshalBinary rejects the wrong length", func() {
			var h2 MHDR
			So(h2.UnmarshalBinary([]byte{}), ShouldNotBeNil)
			So(h2.UnmarshalBinary([]byte{1, 2}), ShouldNotBeNil)
		})
	})
}
