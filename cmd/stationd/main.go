// cmd/stationd/main.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hydromon/stationd/internal/acquire"
	busmodbus "github.com/hydromon/stationd/internal/bus/modbus"
	"github.com/hydromon/stationd/internal/config"
	"github.com/hydromon/stationd/internal/datalog"
	"github.com/hydromon/stationd/internal/health"
	"github.com/hydromon/stationd/internal/logging"
	"github.com/hydromon/stationd/internal/record"
	"github.com/hydromon/stationd/internal/uplink"
)

// firmwareTarget is the name this station registers for firmware delivery.
const firmwareTarget = "stationd"

func main() {
	var (
		cfgPath string
		loop    bool
	)

	root := &cobra.Command{
		Use:          "stationd",
		Short:        "Water-quality field station telemetry agent",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath, loop)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "configs/station.yaml", "station configuration file")
	root.Flags().BoolVar(&loop, "loop", false, "keep running, sleeping sleep_ms between cycles")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfgPath string, loop bool) error {
	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	log := logging.New(logging.Config{
		Level:      cfg.Station.Log.Level,
		File:       cfg.Station.Log.File,
		MaxSizeMB:  cfg.Station.Log.MaxSizeMB,
		MaxBackups: cfg.Station.Log.MaxBackups,
	})

	log.Info().Str("subsys", "boot").Msg("system starting")

	// --------------------
	// Cycle loop: one pass per wake; --loop substitutes for deep sleep
	// --------------------

	for {
		cycle(cfg.Station, log)

		if !loop {
			return nil
		}

		sleep := time.Duration(cfg.Station.SleepMs) * time.Millisecond
		log.Info().Str("subsys", "power").Dur("sleep", sleep).Msg("entering sleep")
		time.Sleep(sleep)
	}
}

// cycle runs one full pass: gateway, firmware check, storage, acquisition,
// persist, uplink, release. Everything but bus construction degrades; no
// sensor, storage, or uplink failure may stop the remaining phases.
func cycle(st config.StationConfig, log zerolog.Logger) {
	// ---- gateway ----
	var gw *uplink.Gateway
	if st.Gateway.Device != "" {
		g, err := uplink.Connect(uplink.Config{
			Device:     st.Gateway.Device,
			BaudRate:   st.Gateway.BaudRate,
			ProductUID: st.Gateway.ProductUID,
			Timeout:    time.Duration(st.Gateway.TimeoutMs) * time.Millisecond,
		}, log)
		if err != nil {
			log.Warn().Str("subsys", "notecard").Err(err).Msg("gateway unavailable")
		} else {
			gw = g
			defer gw.Close()
		}
	}

	// ---- firmware check ----
	if gw != nil && st.Storage.FirmwareFile != "" {
		stageFirmware(gw, st.Storage.FirmwareFile, log)
	}

	// ---- storage medium ----
	store, medium := datalog.Build(st.Storage, log)
	defer unmount(medium, log)

	// ---- bus transport: the only fatal path of a cycle ----
	transport, err := busmodbus.New(busmodbus.Config{
		Device:   st.Bus.Device,
		BaudRate: st.Bus.BaudRate,
		DataBits: st.Bus.DataBits,
		Parity:   st.Bus.Parity,
		StopBits: st.Bus.StopBits,
		Timeout:  time.Duration(st.Bus.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		log.Error().Str("subsys", "modbus").Err(err).Msg("bus initialization failed, aborting cycle")
		return
	}
	defer transport.Close()

	engine, err := acquire.Build(st.Sensors, transport, log)
	if err != nil {
		log.Error().Str("subsys", "sensors").Err(err).Msg("engine build failed, aborting cycle")
		return
	}

	// ---- acquire ----
	log.Info().Str("subsys", "sensors").Msg("collecting data from all sensors")
	snapshot := engine.RunCycle()

	timestamp := record.Timestamp(time.Now())
	flat := record.Flatten(snapshot)

	// ---- persist ----
	if res := store.Save(timestamp, flat); !res.OK() {
		log.Warn().Str("subsys", "sd").
			Bool("tabular", res.Tabular).Bool("structured", res.Structured).
			Msg("record not fully persisted")
	}

	// ---- uplink: best effort, the record is already durable ----
	if gw == nil {
		return
	}

	h := health.Collect(snapshot)
	if err := gw.SendReading(timestamp, flat, health.Encode(h)); err != nil {
		log.Warn().Str("subsys", "notecard").Err(err).Msg("uplink send failed")
	}
	if err := gw.Sync(); err != nil {
		log.Warn().Str("subsys", "notecard").Err(err).Msg("sync failed")
	}
}

// stageFirmware fetches a pending image and stages it to disk. Installation
// is left to the boot path; a staging failure only costs this cycle's check.
func stageFirmware(gw *uplink.Gateway, path string, log zerolog.Logger) {
	log.Info().Str("subsys", "ota").Msg("checking for updates")

	body, pending, err := gw.PendingFirmware(firmwareTarget)
	if err != nil {
		log.Warn().Str("subsys", "ota").Err(err).Msg("firmware check failed")
		return
	}
	if !pending {
		log.Info().Str("subsys", "ota").Msg("no update available")
		return
	}

	if err := os.WriteFile(path, body, 0o644); err != nil {
		log.Warn().Str("subsys", "ota").Err(err).Msg("firmware staging failed")
		return
	}

	log.Info().Str("subsys", "ota").Str("path", path).Msg("firmware staged")
}

func unmount(m *datalog.Medium, log zerolog.Logger) {
	if err := m.Unmount(); err != nil {
		log.Warn().Str("subsys", "sd").Err(err).Msg("could not unmount storage medium")
		return
	}
	log.Info().Str("subsys", "sd").Msg("storage medium unmounted")
}
