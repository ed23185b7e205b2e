// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for the application.
// It aggregates all other specific configuration structs.
type Config struct {
	Log  LogConfig  `description:"Logging configuration" koanf:"log"`
	Scan ScanConfig `description:"Scan configuration" koanf:"scan"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level   string `description:"Log level (debug, info, warn, error)" koanf:"level"`
	Format  string `description:"Log format: json | text" koanf:"format"`
	NoColor bool   `description:"Disable colored console output" koanf:"no_color"`
}

// ScanConfig tunes the scan loop and the driver timeouts. Validation
// tags are enforced by Manager.Validate before any scan starts.
type ScanConfig struct {
	// Interval between scan passes in watch mode.
	Interval time.Duration `description:"Interval between scan passes" koanf:"interval" validate:"gt=0"`

	// ChannelHopInterval is the dwell time per channel while hopping.
	ChannelHopInterval time.Duration `description:"Dwell time per channel while hopping" koanf:"channel_hop_interval" validate:"gt=0"`

	// MaxNetworks caps how many networks one scan pass reports.
	MaxNetworks int `description:"Maximum networks retained per scan" koanf:"max_networks" validate:"gte=1,lte=10000"`

	// Timeout bounds one blocking scan command.
	Timeout time.Duration `description:"Timeout for one scan command" koanf:"timeout" validate:"gt=0"`

	// Channels to hop across.
	Channels []int `description:"Channel hop list" koanf:"channels" validate:"min=1,dive,gte=1,lte=196"`

	// MinSignal filters out networks weaker than this dBm value.
	MinSignal int `description:"Minimum signal in dBm to keep a network" koanf:"min_signal" validate:"gte=-100,lte=0"`
}

// DefaultScanChannels returns the default hop list: every 2.4 GHz
// channel plus the 5 GHz set from 36 upward in steps of 4.
func DefaultScanChannels() []int {
	channels := make([]int, 0, 48)
	for ch := 1; ch <= 14; ch++ {
		channels = append(channels, ch)
	}
	for ch := 36; ch <= 165; ch += 4 {
		channels = append(channels, ch)
	}
	return channels
}
