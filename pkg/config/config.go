package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the dashboard application configuration.
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	UI     UIConfig     `yaml:"ui"`
	Mock   MockConfig   `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// UIConfig contains display parameters.
type UIConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Minimum time between widget updates
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	SamplePeriod      time.Duration `yaml:"sample_period"`       // Time between synthetic frames
	BaseLevel         uint16        `yaml:"base_level"`          // Baseline spectral channel count
	DriftLevel        uint16        `yaml:"drift_level"`         // Slow drift amplitude on top of the baseline
	UVLevel           uint32        `yaml:"uv_level"`            // Synthetic UV index count
	SaturateEvery     int           `yaml:"saturate_every"`      // Saturate one channel every N frames (0 = never)
	DropSpectralEvery int           `yaml:"drop_spectral_every"` // Omit spectral fields every N frames (0 = never)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
			Baud: 115200,
		},
		UI: UIConfig{
			RefreshInterval: 100 * time.Millisecond,
		},
		Mock: MockConfig{
			SamplePeriod:      500 * time.Millisecond, // Matches the device cadence
			BaseLevel:         8000,
			DriftLevel:        4000,
			UVLevel:           3,
			SaturateEvery:     20,
			DropSpectralEvery: 0,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.UI.RefreshInterval == 0 {
		c.UI.RefreshInterval = def.UI.RefreshInterval
	}

	if c.Mock.SamplePeriod == 0 {
		c.Mock.SamplePeriod = def.Mock.SamplePeriod
	}
	if c.Mock.BaseLevel == 0 {
		c.Mock.BaseLevel = def.Mock.BaseLevel
	}
	if c.Mock.UVLevel == 0 {
		c.Mock.UVLevel = def.Mock.UVLevel
	}
}
