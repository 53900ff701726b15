// internal/record/record.go
package record

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Reading is one measured value or an explicit absent marker.
// Valid=false means the read failed; that is distinct from a measured zero.
type Reading struct {
	Value float64
	Valid bool
}

// Value wraps a successfully measured value.
func Value(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// Absent is the marker stored when a read fails.
func Absent() Reading {
	return Reading{}
}

// MarshalJSON renders an absent reading as null.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// String renders the reading for the tabular sink: an absent reading is an
// empty cell so the column count stays constant.
func (r Reading) String() string {
	if !r.Valid {
		return ""
	}
	s := strconv.FormatFloat(r.Value, 'g', -1, 64)
	// Integral values keep a trailing ".0" so a cell is recognizably a float.
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// DeviceReadings maps parameter name to reading for one device.
type DeviceReadings map[string]Reading

// Snapshot maps device id to its readings for one acquisition cycle.
type Snapshot map[string]DeviceReadings

// Flatten collapses a snapshot into "<device>_<parameter>" keys.
// One-to-one: absent markers are preserved, nothing is aggregated.
func Flatten(snap Snapshot) map[string]Reading {
	flat := make(map[string]Reading)
	for device, params := range snap {
		for name, r := range params {
			flat[device+"_"+name] = r
		}
	}
	return flat
}

const timestampLayout = "2006-01-02T15:04:05Z"

// Timestamp formats t as second-precision ISO-8601 in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
