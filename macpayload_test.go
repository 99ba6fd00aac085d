package lorawan

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJoinRequestPayload(t *testing.T) {
	Convey("Given the S1 join-request fields from the spec", t, func() {
		p := JoinRequestPayload{
			AppEUI:   EUI64{0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02, 0x02},
			DevEUI:   EUI64{0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01},
			DevNonce: [2]byte{0x78, 0x56},
		}

		Convey("Then MarshalBinary produces 18 bytes, AppEUI | DevEUI | DevNonce", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)
			So(len(b), ShouldEqual, 18)
			So(b[0:8], ShouldResemble, p.AppEUI[:])
			So(b[8:16], ShouldResemble, p.DevEUI[:])
			So(b[16:18], ShouldResemble, []byte{0x78, 0x56})
		})

		Convey("Then UnmarshalBinary round-trips", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)

			var p2 JoinRequestPayload
			So(p2.UnmarshalBinary(b), ShouldBeNil)
			So(p2, ShouldResemble, p)
		})

		Convey("Then UnmarshalBinary rejects the wrong length", func() {
			var p2 JoinRequestPayload
			So(p2.UnmarshalBinary([]byte{1, 2, 3}), ShouldNotBeNil)
		})
	})
}

func TestJoinAcceptPayload(t *testing.T) {
	Convey("Given the S1 join-accept fields from the spec", t, func() {
		p := JoinAcceptPayload{
			AppNonce:   [3]byte{0xAB, 0xCD, 0xEF},
			NetID:      NetID{0x01, 0x02, 0x03},
			DevAddr:    DevAddr{0x04, 0x03, 0x02, 0x01},
			DLSettings: 0x00,
			RXDelay:    0x01,
		}

		Convey("Then MarshalBinary produces 12 bytes with no CFList", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)
			So(len(b), ShouldEqual, 12)
			So(b[0:3], ShouldResemble, []byte{0xAB, 0xCD, 0xEF})
		})

		Convey("Then DLSettings decodes into RX2DR and RX1DROffset", func() {
			p.DLSettings = 0x35 // offset=3, rx2dr=5
			So(p.DLSettingsRX1DROffset(), ShouldEqual, uint8(3))
			So(p.DLSettingsRX2DR(), ShouldEqual, uint8(5))
		})

		Convey("Then UnmarshalBinary round-trips without a CFList", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)

			var p2 JoinAcceptPayload
			So(p2.UnmarshalBinary(b), ShouldBeNil)
			So(p2, ShouldResemble, p)
		})

		Convey("Then a CFList round-trips and must be exactly 16 bytes", func() {
			withCFList := p
			withCFList.CFList = make([]byte, CFListSize)
			for i := range withCFList.CFList {
				withCFList.CFList[i] = byte(i)
			}

			b, err := withCFList.MarshalBinary()
			So(err, ShouldBeNil)
			So(len(b), ShouldEqual, 12+CFListSize)

			var p2 JoinAcceptPayload
			So(p2.UnmarshalBinary(b), ShouldBeNil)
			So(p2, ShouldResemble, withCFList)

			bad := p
			bad.CFList = make([]byte, 3)
			_, err = bad.MarshalBinary()
			So(err, ShouldNotBeNil)
		})

		Convey("Then UnmarshalBinary rejects lengths other than 12 or 28", func() {
			var p2 JoinAcceptPayload
			So(p2.UnmarshalBinary(make([]byte, 20)), ShouldNotBeNil)
		})
	})
}

func TestMACPayload(t *testing.T) {
	Convey("Given a data MACPayload with FOpts, FPort and FRMPayload", t, func() {
		fctrl, err := NewFCtrl(false, false, false, false, 1)
		So(err, ShouldBeNil)

		port := uint8(5)
		mp := MACPayload{
			FHDR: FHDR{
				DevAddr: DevAddr{1, 2, 3, 4},
				FCtrl:   fctrl,
				FCnt:    42,
				FOpts:   []byte{0x02},
			},
			FPort:      &port,
			FRMPayload: []byte("hi"),
		}

		Convey("Then MarshalBinary/UnmarshalBinary round-trip", func() {
			b, err := mp.MarshalBinary()
			So(err, ShouldBeNil)

			var mp2 MACPayload
			So(mp2.UnmarshalBinary(b), ShouldBeNil)
			So(mp2.FHDR, ShouldResemble, mp.FHDR)
			So(*mp2.FPort, ShouldEqual, *mp.FPort)
			So(mp2.FRMPayload, ShouldResemble, mp.FRMPayload)
		})

		Convey("Then a frame with no FPort/FRMPayload round-trips to nil", func() {
			empty := MACPayload{FHDR: FHDR{DevAddr: DevAddr{1, 2, 3, 4}, FCnt: 1}}
			b, err := empty.MarshalBinary()
			So(err, ShouldBeNil)

			var empty2 MACPayload
			So(empty2.UnmarshalBinary(b), ShouldBeNil)
			So(empty2.FPort, ShouldBeNil)
			So(empty2.FRMPayload, ShouldBeNil)
		})

		Convey("Then EncryptionKey selects NwkSKey for FPort 0 or nil, AppSKey otherwise", func() {
			nwkSKey := AES128Key{1}
			appSKey := AES128Key{2}

			So(mp.EncryptionKey(nwkSKey, appSKey), ShouldEqual, appSKey)

			zero := uint8(0)
			mp.FPort = &zero
			So(mp.EncryptionKey(nwkSKey, appSKey), ShouldEqual, nwkSKey)

			mp.FPort = nil
			So(mp.EncryptionKey(nwkSKey, appSKey), ShouldEqual, nwkSKey)
		})
	})
}
