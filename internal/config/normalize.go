// internal/config/normalize.go
package config

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	st := &cfg.Station

	// ------------------------------------------------------------
	// FIELD BUS DEFAULTS (Aqualabo factory settings)
	// ------------------------------------------------------------

	if st.Bus.BaudRate == 0 {
		st.Bus.BaudRate = 9600
	}
	if st.Bus.DataBits == 0 {
		st.Bus.DataBits = 8
	}
	if st.Bus.Parity == "" {
		st.Bus.Parity = "N"
	}
	if st.Bus.StopBits == 0 {
		st.Bus.StopBits = 1
	}
	if st.Bus.TimeoutMs == 0 {
		st.Bus.TimeoutMs = 1000
	}

	// ------------------------------------------------------------
	// STORAGE / GATEWAY / LOG DEFAULTS
	// ------------------------------------------------------------

	if st.Storage.CSVFile == "" {
		st.Storage.CSVFile = "station_data.csv"
	}
	if st.Storage.JSONLFile == "" {
		st.Storage.JSONLFile = "station_data.jsonl"
	}

	if st.Gateway.BaudRate == 0 {
		st.Gateway.BaudRate = 9600
	}
	if st.Gateway.TimeoutMs == 0 {
		st.Gateway.TimeoutMs = 5000
	}

	if st.Log.Level == "" {
		st.Log.Level = "info"
	}
	if st.Log.MaxSizeMB == 0 {
		st.Log.MaxSizeMB = 5
	}
	if st.Log.MaxBackups == 0 {
		st.Log.MaxBackups = 3
	}

	// ------------------------------------------------------------
	// SENSOR PROFILE DEFAULTS
	// ------------------------------------------------------------

	for si := range st.Sensors {
		s := &st.Sensors[si]

		for pi := range s.Params {
			p := &s.Params[pi]

			// One float32 spans two registers.
			if p.Quantity == 0 {
				p.Quantity = 2
			}
		}
	}
}
