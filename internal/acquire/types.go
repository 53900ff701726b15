// internal/acquire/types.go
package acquire

import "time"

// Parameter is one measured value on a peer: a named holding-register window.
// A nil Address marks a misconfigured entry; it is skipped at poll time.
type Parameter struct {
	Name     string
	Address  *uint16
	Quantity uint16
}

// Profile describes one physical sensor on the field bus.
// A nil BusAddress marks an unconfigured placeholder that is never addressed.
// Activation happens only when the full triple (BusAddress,
// ActivationRegister, ActivationValue) is present.
type Profile struct {
	DeviceID           string
	BusAddress         *uint8
	ActivationRegister *uint16
	ActivationValue    *uint16
	Warmup             time.Duration
	Parameters         []Parameter
}
