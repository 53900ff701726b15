// internal/bus/bus.go
package bus

import "errors"

// Transport is the half-duplex field-bus contract the acquisition engine
// depends on. The medium is single-master: implementations must serialize
// calls internally, and a failed exchange must leave the line ready for the
// next peer.
type Transport interface {
	// WriteSingleRegister writes one holding register on the addressed peer.
	WriteSingleRegister(slave uint8, register, value uint16) error

	// ReadHoldingRegisters reads qty consecutive holding registers starting
	// at start. On success the returned slice length equals qty.
	ReadHoldingRegisters(slave uint8, start, qty uint16) ([]uint16, error)
}

// ErrTimeout reports a peer that did not answer within the transport window.
var ErrTimeout = errors.New("bus: timeout")

// ErrProtocol reports a malformed or unexpected reply frame.
var ErrProtocol = errors.New("bus: protocol error")
