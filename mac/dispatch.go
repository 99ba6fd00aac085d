package mac

// RequestType distinguishes an unconfirmed from a confirmed MCPS
// request/indication.
type RequestType int

// The two MCPS request/frame kinds.
const (
	Unconfirmed RequestType = iota
	Confirmed
)

// MCPSConfirm is raised once per accepted MCPS request, asynchronously,
// after the in-flight transaction reaches IDLE.
type MCPSConfirm struct {
	Status Status
}

// MCPSIndication is raised when a data downlink is received and
// successfully decoded. Confirmed reflects whether the received frame
// itself was a confirmed downlink (CNF_DOWNLINK) — tracked as its own
// field rather than folded into Type, so a mislabelling like the
// original source's (assigning ack_req into the type field) cannot
// happen here.
type MCPSIndication struct {
	Port      uint8
	Data      []byte
	Confirmed bool
}

// MLMERequestType tags the kind of an MLME request/confirm/indication.
type MLMERequestType int

// The five MLME request kinds.
const (
	MLMEJoin MLMERequestType = iota
	MLMELinkCheck
	MLMESet
	MLMEGet
	MLMEReset
)

// MLMEConfirm is raised for a JOIN request (on join-accept, failure or
// timeout) and whenever a LinkCheckAns is received. SET, GET and RESET
// return their outcome synchronously and raise no MLMEConfirm.
type MLMEConfirm struct {
	Type   MLMERequestType
	Status Status

	// Populated when Type == MLMELinkCheck and Status.OK().
	Margin       uint8
	GatewayCount uint8

	// Not populated by this engine: GetMIB returns the value directly.
	MIBValue interface{}
}

// MLMEIndication is raised for asynchronous management-plane events that
// are not the direct result of a request, e.g. a LinkCheckAns arriving
// unsolicited is still modeled as a confirm of the pending LinkCheck
// request; MLMEIndication is reserved for events with no matching
// request (currently: none emitted by this engine, kept for symmetry
// with spec.md §6's mlme_indication entry in the user SAP).
type MLMEIndication struct {
	Type MLMERequestType
}

// Dispatcher is the user-facing service access point: the "external
// collaborator" the enclosing network stack implements to receive
// confirms and indications from the MAC engine.
type Dispatcher interface {
	MCPSConfirm(MCPSConfirm)
	MCPSIndication(MCPSIndication)
	MLMEConfirm(MLMEConfirm)
	MLMEIndication(MLMEIndication)
}
