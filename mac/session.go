package mac

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jia200x/gnrc-lorawan"
	"github.com/jia200x/gnrc-lorawan/band"
)

// Activation is the device's activation method.
type Activation int

// The three activation states.
const (
	ActivationNone Activation = iota
	ActivationABP
	ActivationOTAA
)

func (a Activation) String() string {
	switch a {
	case ActivationNone:
		return "NONE"
	case ActivationABP:
		return "ABP"
	case ActivationOTAA:
		return "OTAA"
	default:
		return "UNKNOWN"
	}
}

// MIBAttribute names a settable/gettable MAC information base attribute.
type MIBAttribute int

// The MIB attributes spec.md's MLME SET/GET support.
const (
	MIBActivationMethod MIBAttribute = iota
	MIBDevAddr
	MIBRX2DR
)

// Session is the MAC information base: activation state, session keys,
// frame counters and the live channel table. Activation, addresses, keys
// and the channel table are written only by MLME paths (join, reset,
// SET); the MCPS paths read them and advance the frame counters.
type Session struct {
	mu sync.Mutex

	Activation Activation
	DevAddr    lorawan.DevAddr
	NwkSKey    lorawan.AES128Key
	AppSKey    lorawan.AES128Key
	NetID      lorawan.NetID
	FCntUp     uint32
	FCntDown   uint32
	RXDelay    uint8
	DLSettings byte
	RX2DR      uint8
	Channels   []band.Channel
}

// NewSession returns a freshly reset session seeded with the region's
// default channel table.
func NewSession(defaultChannels []band.Channel) *Session {
	s := &Session{}
	s.Reset(defaultChannels)
	return s
}

// Reset clears all session state and re-seeds the channel table, per
// spec.md §4.5's RESET request and invariant #6.
func (s *Session) Reset(defaultChannels []band.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Activation = ActivationNone
	s.DevAddr = lorawan.DevAddr{}
	s.NwkSKey = lorawan.AES128Key{}
	s.AppSKey = lorawan.AES128Key{}
	s.NetID = lorawan.NetID{}
	s.FCntUp = 0
	s.FCntDown = 0
	s.RXDelay = 1
	s.DLSettings = 0
	s.RX2DR = 0
	s.Channels = append([]band.Channel(nil), defaultChannels...)
}

// SetMIB implements spec.md §4.5's MLME SET request.
func (s *Session) SetMIB(attr MIBAttribute, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch attr {
	case MIBActivationMethod:
		a, ok := value.(Activation)
		if !ok {
			return errors.New("mac: MIBActivationMethod requires an Activation value")
		}
		if a == ActivationOTAA {
			return errors.New("mac: MIBActivationMethod cannot force OTAA")
		}
		s.Activation = a
	case MIBDevAddr:
		addr, ok := value.(lorawan.DevAddr)
		if !ok {
			return errors.New("mac: MIBDevAddr requires a DevAddr value")
		}
		s.DevAddr = addr
	case MIBRX2DR:
		dr, ok := value.(uint8)
		if !ok {
			return errors.New("mac: MIBRX2DR requires a uint8 value")
		}
		s.RX2DR = dr
	default:
		return errors.Errorf("mac: unsupported MIB attribute for SET: %d", attr)
	}
	return nil
}

// GetMIB implements spec.md §4.5's MLME GET request.
func (s *Session) GetMIB(attr MIBAttribute) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch attr {
	case MIBActivationMethod:
		return s.Activation, nil
	case MIBDevAddr:
		return s.DevAddr, nil
	case MIBRX2DR:
		return s.RX2DR, nil
	default:
		return nil, errors.Errorf("mac: unsupported MIB attribute for GET: %d", attr)
	}
}
