// pkg/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance. It must run
// before Load; NewManager calls it for you.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading, validating, and accessing application
// configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	validate      *validator.Validate
	mu            sync.RWMutex // protects currentConfig during runtime updates
}

// NewManager creates a config Manager backed by the global Koanf
// instance.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
		validate:      validator.New(),
	}
}

// DefaultConfig returns a Config populated with the baseline values
// used when no other source overrides them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scan: ScanConfig{
			Interval:           3 * time.Second,
			ChannelHopInterval: 300 * time.Millisecond,
			MaxNetworks:        100,
			Timeout:            30 * time.Second,
			Channels:           DefaultScanChannels(),
			MinSignal:          -100,
		},
	}
}

// Load layers the configuration sources in priority order (defaults,
// optional YAML file, environment, flags) and unmarshals the merged
// result into the manager.
func (m *Manager) Load(flags *pflag.FlagSet, configFilePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources := []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configFilePath},
		&EnvSource{},
		&FlagSource{Flags: flags},
	}

	for _, src := range sources {
		if err := src.Load(m.koanfInstance); err != nil {
			return fmt.Errorf("load %s config: %w", src.Name(), err)
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("unmarshal merged config: %w", err)
	}
	m.currentConfig = newCfg

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Validate runs the struct validation rules over the current scan
// configuration. Called after Load and again on every hot reload.
func (m *Manager) Validate() error {
	m.mu.RLock()
	cfg := m.currentConfig.Scan
	m.mu.RUnlock()

	if err := m.validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid scan configuration: %w", err)
	}
	return nil
}

// Reload re-reads the given config file over the current state and swaps
// the merged result in only when it validates, so a half-saved file never
// replaces a working configuration. Used by the file watcher.
func (m *Manager) Reload(configFilePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := &FileSource{Path: configFilePath}
	if err := src.Load(m.koanfInstance); err != nil {
		return fmt.Errorf("reload %s: %w", src.Name(), err)
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("unmarshal reloaded config: %w", err)
	}
	if err := m.validate.Struct(newCfg.Scan); err != nil {
		return fmt.Errorf("invalid scan configuration after reload: %w", err)
	}

	m.currentConfig = newCfg
	return nil
}

// DefaultConfigAsMap flattens DefaultConfig into the dotted-key map
// koanf's confmap provider expects. Manual, but it guarantees koanf
// knows every key.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"log.level":    def.Log.Level,
		"log.format":   def.Log.Format,
		"log.no_color": def.Log.NoColor,

		"scan.interval":             def.Scan.Interval,
		"scan.channel_hop_interval": def.Scan.ChannelHopInterval,
		"scan.max_networks":         def.Scan.MaxNetworks,
		"scan.timeout":              def.Scan.Timeout,
		"scan.channels":             def.Scan.Channels,
		"scan.min_signal":           def.Scan.MinSignal,
	}
}

// BindFlags defines command-line flags corresponding to configuration
// settings so posflag can overlay them. The main --config / -c flag is
// defined directly on the root command.
func BindFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()

	flags.String("log.level", def.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("log.format", def.Log.Format, "Log format (text, json)")
	flags.Duration("scan.interval", def.Scan.Interval, "Interval between scan passes in watch mode")
	flags.Duration("scan.timeout", def.Scan.Timeout, "Timeout for one scan command")
	flags.Int("scan.min_signal", def.Scan.MinSignal, "Minimum signal in dBm to keep a network")
}
