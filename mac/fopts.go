package mac

import "github.com/pkg/errors"

// cidLinkCheck is the CID of the (only, in this scope) supported MAC
// command: LinkCheckReq/LinkCheckAns.
const cidLinkCheck = 0x02

// FOptsProcessor tracks pending MAC commands to piggyback on the next
// uplink and parses MAC commands received on a downlink. spec.md §4.8
// scopes this to LinkCheckReq/Ans only.
type FOptsProcessor struct {
	linkCheckPending bool
}

// RequestLinkCheck marks a LinkCheckReq as pending; it is appended to
// the next uplink's FOpts by Build.
func (f *FOptsProcessor) RequestLinkCheck() {
	f.linkCheckPending = true
}

// Build returns the FOpts bytes for the next uplink. Len reports the same
// length in advance, so a caller can size a frame before committing to
// the send.
func (f *FOptsProcessor) Build() []byte {
	if !f.linkCheckPending {
		return nil
	}
	return []byte{cidLinkCheck}
}

// Len reports the length Build would return, without allocating.
func (f *FOptsProcessor) Len() int {
	if f.linkCheckPending {
		return 1
	}
	return 0
}

// LinkCheckAns is the parsed result of a received LinkCheckAns command.
type LinkCheckAns struct {
	Margin       uint8
	GatewayCount uint8
}

// Process walks a downlink FOpts buffer by CID. It clears the pending
// LinkCheckReq bit and returns the parsed LinkCheckAns when one is
// found. An unrecognized CID aborts processing of the remaining bytes,
// per spec.md §4.8's conservative policy.
func (f *FOptsProcessor) Process(fopts []byte) (*LinkCheckAns, error) {
	var ans *LinkCheckAns

	i := 0
	for i < len(fopts) {
		cid := fopts[i]
		i++

		switch cid {
		case cidLinkCheck:
			if i+2 > len(fopts) {
				return ans, errors.New("mac: truncated LinkCheckAns in FOpts")
			}
			ans = &LinkCheckAns{Margin: fopts[i], GatewayCount: fopts[i+1]}
			i += 2
			f.linkCheckPending = false
		default:
			return ans, nil
		}
	}
	return ans, nil
}
