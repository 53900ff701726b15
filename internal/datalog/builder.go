// internal/datalog/builder.go
package datalog

import (
	"github.com/rs/zerolog"

	cfg "github.com/hydromon/stationd/internal/config"
)

// Build mounts the storage medium and constructs the Store. A mount failure
// is not fatal: the Store is returned with no medium and every save reports
// failure, while the cycle carries on to the uplink.
func Build(storage cfg.StorageConfig, log zerolog.Logger) (*Store, *Medium) {
	m, err := Mount(storage.MountDir)
	if err != nil {
		log.Warn().Str("subsys", "sd").Err(err).Msg("could not mount storage medium")
		m = nil
	} else {
		log.Info().Str("subsys", "sd").Str("dir", storage.MountDir).Msg("storage medium mounted")
	}

	return New(m, storage.CSVFile, storage.JSONLFile, log), m
}
