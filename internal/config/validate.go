// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	st := cfg.Station

	if st.Bus.Device == "" {
		return fmt.Errorf("bus.device is required")
	}
	if st.SleepMs < 0 {
		return fmt.Errorf("sleep_ms must be >= 0")
	}
	if len(st.Sensors) == 0 {
		return fmt.Errorf("at least one sensor profile is required")
	}

	// ------------------------------------------------------------
	// PER-PROFILE VALIDATION
	// ------------------------------------------------------------

	seenID := make(map[string]struct{})

	for _, s := range st.Sensors {
		if s.ID == "" {
			return fmt.Errorf("sensor profile with empty id")
		}
		if _, dup := seenID[s.ID]; dup {
			return fmt.Errorf("sensor %q: duplicate id", s.ID)
		}
		seenID[s.ID] = struct{}{}

		if s.BusAddress != nil {
			if *s.BusAddress < 1 || *s.BusAddress > 247 {
				return fmt.Errorf("sensor %q: bus_address %d out of range 1-247", s.ID, *s.BusAddress)
			}
		}
		if s.WarmupMs < 0 {
			return fmt.Errorf("sensor %q: warmup_ms must be >= 0", s.ID)
		}

		seenParam := make(map[string]struct{})
		for _, p := range s.Params {
			// A param missing name or address is skippable at runtime; only
			// duplicates are a hard configuration error.
			if p.Name == "" {
				continue
			}
			if _, dup := seenParam[p.Name]; dup {
				return fmt.Errorf("sensor %q: duplicate param %q", s.ID, p.Name)
			}
			seenParam[p.Name] = struct{}{}
		}
	}

	// ------------------------------------------------------------
	// FLATTENED KEY COLLISION VALIDATION
	// ------------------------------------------------------------

	// The log sinks key columns by "<id>_<param>". Ids like "A_B"/"A" can
	// collide there even though ids themselves are unique.

	keyOwner := make(map[string]string)

	for _, s := range st.Sensors {
		for _, p := range s.Params {
			if p.Name == "" {
				continue
			}

			key := s.ID + "_" + p.Name
			if prev, exists := keyOwner[key]; exists && prev != s.ID {
				return fmt.Errorf(
					"flattened key collision: %q produced by sensors %q and %q",
					key, prev, s.ID,
				)
			}
			keyOwner[key] = s.ID
		}
	}

	return nil
}
