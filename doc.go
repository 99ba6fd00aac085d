// Package lorawan implements the LoRaWAN v1.0 frame codec: wire encoding
// and decoding of join and data frames, MIC calculation and verification,
// FRMPayload encryption, and OTAA session-key derivation.
//
// The stateful MAC engine that drives a radio through the join / uplink /
// downlink cycle using this codec lives in the sibling mac package.
package lorawan
