// internal/datalog/types.go
package datalog

// SaveResult reports per-sink append outcomes for one record.
// The sinks are independent: one failing never blocks the other.
type SaveResult struct {
	Tabular    bool
	Structured bool
}

// OK reports whether both sinks accepted the record.
func (r SaveResult) OK() bool {
	return r.Tabular && r.Structured
}
