// internal/codec/codec.go
package codec

import (
	"errors"
	"math"
)

// ErrInvalidRegisterCount reports a register slice that cannot hold one float32.
var ErrInvalidRegisterCount = errors.New("codec: register pair must contain exactly 2 words")

// Float32FromRegisters decodes two 16-bit holding registers into one IEEE-754
// single-precision value using big-endian word order:
//
//	regs[0] = high word (most-significant 16 bits)
//	regs[1] = low word
//
// This is the register convention used by Aqualabo and Keller probes. The
// decode is a pure bit reinterpretation: no rounding, no byte swapping inside
// words, no sign extension.
func Float32FromRegisters(regs []uint16) (float64, error) {
	if len(regs) != 2 {
		return 0, ErrInvalidRegisterCount
	}

	raw := uint32(regs[0])<<16 | uint32(regs[1])
	return float64(math.Float32frombits(raw)), nil
}
