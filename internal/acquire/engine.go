// internal/acquire/engine.go
package acquire

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hydromon/stationd/internal/bus"
	"github.com/hydromon/stationd/internal/codec"
	"github.com/hydromon/stationd/internal/record"
)

// Config is the immutable device table the engine runs against.
type Config struct {
	Profiles []Profile
}

// Engine drives activation and polling across the whole device table.
// Single-threaded by design: the bus is half-duplex single-master, so there
// is never more than one exchange in flight.
type Engine struct {
	cfg Config
	tr  bus.Transport
	log zerolog.Logger

	// sleep is swappable so tests do not wait out warm-ups.
	sleep func(time.Duration)
}

// New creates an engine with immutable config.
func New(cfg Config, tr bus.Transport, log zerolog.Logger) (*Engine, error) {
	if len(cfg.Profiles) == 0 {
		return nil, errors.New("acquire: at least one device profile required")
	}
	if tr == nil {
		return nil, errors.New("acquire: transport required")
	}

	seen := make(map[string]struct{}, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if p.DeviceID == "" {
			return nil, errors.New("acquire: device id required")
		}
		if _, dup := seen[p.DeviceID]; dup {
			return nil, fmt.Errorf("acquire: duplicate device id %q", p.DeviceID)
		}
		seen[p.DeviceID] = struct{}{}
	}

	return &Engine{cfg: cfg, tr: tr, log: log, sleep: time.Sleep}, nil
}

// ActivateAll issues the activation write for every profile carrying a
// complete activation triple, then waits once for the longest warm-up in the
// table. An activation failure marks that device and the cycle continues;
// it is never fatal.
func (e *Engine) ActivateAll() {
	var maxWarmup time.Duration

	for _, p := range e.cfg.Profiles {
		// Warm-up is tracked across ALL profiles, not only activated ones.
		if p.Warmup > maxWarmup {
			maxWarmup = p.Warmup
		}

		if p.BusAddress == nil || p.ActivationRegister == nil || p.ActivationValue == nil {
			e.log.Warn().Str("subsys", "sensors").Str("device", p.DeviceID).
				Msg("missing activation fields, skipping activation")
			continue
		}

		if err := e.tr.WriteSingleRegister(*p.BusAddress, *p.ActivationRegister, *p.ActivationValue); err != nil {
			e.log.Warn().Str("subsys", "sensors").Str("device", p.DeviceID).Err(err).
				Msg("activation failed")
			continue
		}

		e.log.Debug().Str("subsys", "sensors").Str("device", p.DeviceID).
			Msg("activated")
	}

	if maxWarmup > 0 {
		e.log.Info().Str("subsys", "sensors").Dur("warmup", maxWarmup).
			Msg("warmup wait")
		e.sleep(maxWarmup)
	}
}

// PollAll reads every configured parameter on every device. Failures are
// contained at the smallest scope: a bad parameter stores an absent marker
// and the loop moves on, a bad device never blocks the next one.
func (e *Engine) PollAll() record.Snapshot {
	snap := make(record.Snapshot, len(e.cfg.Profiles))

	for _, p := range e.cfg.Profiles {
		snap[p.DeviceID] = e.pollDevice(p)
	}

	return snap
}

// RunCycle performs one full acquisition cycle: activate, warm up, poll.
func (e *Engine) RunCycle() record.Snapshot {
	e.ActivateAll()
	return e.PollAll()
}

func (e *Engine) pollDevice(p Profile) record.DeviceReadings {
	readings := make(record.DeviceReadings, len(p.Parameters))

	// Placeholders and empty profiles yield an empty (non-nil) reading set.
	if p.BusAddress == nil || len(p.Parameters) == 0 {
		return readings
	}

	e.log.Debug().Str("subsys", "sensors").Str("device", p.DeviceID).
		Uint8("slave", *p.BusAddress).Msg("reading device")

	for _, param := range p.Parameters {
		if param.Name == "" {
			e.log.Warn().Str("subsys", "sensors").Str("device", p.DeviceID).
				Msg("param entry without name, skipping")
			continue
		}
		if param.Address == nil {
			e.log.Warn().Str("subsys", "sensors").Str("device", p.DeviceID).
				Str("param", param.Name).Msg("param entry without address")
			readings[param.Name] = record.Absent()
			continue
		}

		regs, err := e.tr.ReadHoldingRegisters(*p.BusAddress, *param.Address, param.Quantity)
		if err != nil {
			e.log.Warn().Str("subsys", "sensors").Str("device", p.DeviceID).
				Str("param", param.Name).Err(err).Msg("read failed")
			readings[param.Name] = record.Absent()
			continue
		}

		value, err := codec.Float32FromRegisters(regs)
		if err != nil {
			e.log.Warn().Str("subsys", "sensors").Str("device", p.DeviceID).
				Str("param", param.Name).Err(err).Msg("decode failed")
			readings[param.Name] = record.Absent()
			continue
		}

		readings[param.Name] = record.Value(value)
	}

	return readings
}
