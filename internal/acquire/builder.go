// internal/acquire/builder.go
package acquire

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hydromon/stationd/internal/bus"
	cfg "github.com/hydromon/stationd/internal/config"
)

// Build converts the station's sensor table into an Engine.
// The config is copied into package-local profiles: the engine never sees
// the global configuration value.
func Build(sensors []cfg.SensorConfig, tr bus.Transport, log zerolog.Logger) (*Engine, error) {
	profiles := make([]Profile, 0, len(sensors))

	for _, s := range sensors {
		p := Profile{
			DeviceID:           s.ID,
			BusAddress:         s.BusAddress,
			ActivationRegister: s.ActivationRegister,
			ActivationValue:    s.ActivationValue,
			Warmup:             time.Duration(s.WarmupMs) * time.Millisecond,
		}

		for _, pc := range s.Params {
			p.Parameters = append(p.Parameters, Parameter{
				Name:     pc.Name,
				Address:  pc.Address,
				Quantity: pc.Quantity,
			})
		}

		profiles = append(profiles, p)
	}

	return New(Config{Profiles: profiles}, tr, log)
}
