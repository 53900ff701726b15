// internal/health/snapshot.go
package health

import "github.com/hydromon/stationd/internal/record"

// Snapshot summarizes one acquisition cycle for the uplink side-band.
// It contains no memory of the past beyond the current cycle.
type Snapshot struct {
	DevicesTotal  int
	DevicesPolled int
	ReadsOK       int
	ReadsFailed   int
}

// Collect derives cycle health from a reading snapshot.
func Collect(snap record.Snapshot) Snapshot {
	var h Snapshot

	h.DevicesTotal = len(snap)
	for _, params := range snap {
		if len(params) > 0 {
			h.DevicesPolled++
		}
		for _, r := range params {
			if r.Valid {
				h.ReadsOK++
			} else {
				h.ReadsFailed++
			}
		}
	}

	return h
}
