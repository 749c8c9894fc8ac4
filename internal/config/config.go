// Package config loads the driver-wide configuration: link transport
// choice, device geometry, and Sender tuning, from a YAML file found by
// searching a fixed list of locations, the way the reference driver finds
// its device-identification data file.
package config

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phasedctl/hostdriver/internal/errs"
)

// SearchPaths is checked in order; the first file that opens wins. If
// explicitPath is non-empty, LoadConfig uses only that.
var SearchPaths = []string{
	"./phasedarray.yaml",
	"./config/phasedarray.yaml",
	"/etc/phasedarray/phasedarray.yaml",
}

// DeviceConfig positions and orients one device in the array, in
// millimeters and degrees, matching how a user hand-writes a geometry file.
type DeviceConfig struct {
	PositionMM   [3]float64 `yaml:"position_mm"`
	RotationDeg  [3]float64 `yaml:"rotation_deg"` // Euler ZYZ, device-frame
	LeftHanded   bool       `yaml:"left_handed"`
	SoundSpeedMM float64    `yaml:"sound_speed_m_per_s"`
}

// LinkConfig selects and configures a transport.
type LinkConfig struct {
	Kind string `yaml:"kind"` // "tcp", "serial", "gpio+tcp", "gpio+serial", "emulator"
	TCP  struct {
		Addr string `yaml:"addr"`
	} `yaml:"tcp"`
	Serial struct {
		Device string `yaml:"device"`
		Baud   int    `yaml:"baud"`
	} `yaml:"serial"`
	GPIO struct {
		Chip      string `yaml:"chip"`
		Offset    int    `yaml:"offset"`
		ActiveLow bool   `yaml:"active_low"`
	} `yaml:"gpio"`
}

// SenderConfig mirrors sender.Option's tunable fields.
type SenderConfig struct {
	SendIntervalUs    int64  `yaml:"send_interval_us"`
	ReceiveIntervalUs int64  `yaml:"receive_interval_us"`
	TimeoutMs         int64  `yaml:"timeout_ms"`
	Parallel          string `yaml:"parallel"` // "auto", "always", "never"
	NonStrict         bool   `yaml:"non_strict"`
	FineSleep         bool   `yaml:"fine_sleep"`
}

// DriverConfig is the top-level document.
type DriverConfig struct {
	Devices []DeviceConfig `yaml:"devices"`
	Link    LinkConfig     `yaml:"link"`
	Sender  SenderConfig   `yaml:"sender"`
}

// LoadConfig reads and parses a driver configuration. If path is empty,
// SearchPaths is tried in order.
func LoadConfig(path string) (*DriverConfig, error) {
	var (
		fp  *os.File
		err error
	)
	if path != "" {
		fp, err = os.Open(path)
		if err != nil {
			return nil, errs.Wrap(errs.InputOutOfRange, "opening config at "+path, err)
		}
	} else {
		for _, candidate := range SearchPaths {
			fp, err = os.Open(candidate)
			if err == nil {
				break
			}
		}
		if fp == nil {
			return nil, errs.New(errs.InputOutOfRange, "no config file found in any search path")
		}
	}
	defer fp.Close()

	data, err := io.ReadAll(fp)
	if err != nil {
		return nil, errs.Wrap(errs.InputOutOfRange, "reading config file", err)
	}

	var cfg DriverConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(errs.InputOutOfRange, "parsing config file", err)
	}
	if len(cfg.Devices) == 0 {
		return nil, errs.New(errs.InputOutOfRange, "config declares no devices")
	}
	return &cfg, nil
}
