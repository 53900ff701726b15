// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Station StationConfig `yaml:"station"`
}

type StationConfig struct {
	Bus     BusConfig      `yaml:"bus"`
	Storage StorageConfig  `yaml:"storage"`
	Gateway GatewayConfig  `yaml:"gateway"`
	Log     LogConfig      `yaml:"log"`
	SleepMs int            `yaml:"sleep_ms"`
	Sensors []SensorConfig `yaml:"sensors"`
}

// ---- FIELD BUS ----

type BusConfig struct {
	Device    string `yaml:"device"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	Parity    string `yaml:"parity"`
	StopBits  int    `yaml:"stop_bits"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- STORAGE ----

type StorageConfig struct {
	MountDir     string `yaml:"mount_dir"`
	CSVFile      string `yaml:"csv_file"`
	JSONLFile    string `yaml:"jsonl_file"`
	FirmwareFile string `yaml:"firmware_file"`
}

// ---- GATEWAY ----

type GatewayConfig struct {
	Device     string `yaml:"device"`
	BaudRate   int    `yaml:"baud_rate"`
	ProductUID string `yaml:"product_uid"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ---- SENSOR PROFILES ----

// SensorConfig is one device profile. A missing bus_address marks an
// unconfigured placeholder that is never addressed on the line.
type SensorConfig struct {
	ID                 string        `yaml:"id"`
	BusAddress         *uint8        `yaml:"bus_address"`
	ActivationRegister *uint16       `yaml:"activation_register"`
	ActivationValue    *uint16       `yaml:"activation_value"`
	WarmupMs           int           `yaml:"warmup_ms"`
	Params             []ParamConfig `yaml:"params"`
}

type ParamConfig struct {
	Name     string  `yaml:"name"`
	Address  *uint16 `yaml:"address"`
	Quantity uint16  `yaml:"quantity"`
}

// Load reads and decodes the station configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}
