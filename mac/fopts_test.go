package mac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFOptsProcessorBuildsLinkCheckReq(t *testing.T) {
	Convey("Given a processor with no pending request", t, func() {
		var f FOptsProcessor

		Convey("Then Build returns nothing", func() {
			So(f.Build(), ShouldBeNil)
			So(f.Len(), ShouldEqual, 0)
		})

		Convey("When RequestLinkCheck is called", func() {
			f.RequestLinkCheck()

			Convey("Then Build returns a single LinkCheckReq byte", func() {
				So(f.Build(), ShouldResemble, []byte{cidLinkCheck})
				So(f.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestFOptsProcessorParsesLinkCheckAns(t *testing.T) {
	Convey("Given a processor with a LinkCheckReq pending", t, func() {
		var f FOptsProcessor
		f.RequestLinkCheck()

		Convey("When a matching LinkCheckAns is processed", func() {
			ans, err := f.Process([]byte{cidLinkCheck, 10, 3})

			Convey("Then it is parsed and the pending flag clears", func() {
				So(err, ShouldBeNil)
				So(ans, ShouldNotBeNil)
				So(ans.Margin, ShouldEqual, 10)
				So(ans.GatewayCount, ShouldEqual, 3)
				So(f.Build(), ShouldBeNil)
			})
		})
	})
}

func TestFOptsProcessorRejectsUnknownCID(t *testing.T) {
	Convey("Given a processor", t, func() {
		var f FOptsProcessor

		Convey("When an unrecognized CID is processed", func() {
			ans, err := f.Process([]byte{0x7F, 0x01, 0x02})

			Convey("Then processing stops without error and without a result", func() {
				So(err, ShouldBeNil)
				So(ans, ShouldBeNil)
			})
		})
	})
}

func TestFOptsProcessorRejectsTruncatedLinkCheckAns(t *testing.T) {
	Convey("Given a processor", t, func() {
		var f FOptsProcessor

		Convey("When a truncated LinkCheckAns is processed", func() {
			_, err := f.Process([]byte{cidLinkCheck, 0x01})

			Convey("Then it errors", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
