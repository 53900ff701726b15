// internal/health/encode.go
package health

// Encode converts a Snapshot into note-body fields.
// Field names are consumed downstream and MUST NOT change.
// No IO. No side effects.
func Encode(h Snapshot) map[string]int {
	return map[string]int{
		"devices_total":  h.DevicesTotal,
		"devices_polled": h.DevicesPolled,
		"reads_ok":       h.ReadsOK,
		"reads_failed":   h.ReadsFailed,
	}
}
