package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lumenlab/slm-aim/internal/protocol"
)

// Config is the root configuration structure for the SLM aim controller.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Instrument InstrumentConfig `yaml:"instrument"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Screen     ScreenConfig     `yaml:"screen"`
	Paths      PathsConfig      `yaml:"paths"`
	Compute    ComputeConfig    `yaml:"compute"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InstrumentConfig identifies the instrument this controller belongs to.
type InstrumentConfig struct {
	// Serial is the instrument serial number. It is the root of every MQTT
	// topic the controller uses, so peers on the same broker stay separated
	// per instrument.
	Serial string `yaml:"serial"`

	// Name is a free-form label for log output.
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// ScreenConfig describes the modulator display the patterns are presented on.
type ScreenConfig struct {
	// Width and Height are the modulator resolution in pixels. Every
	// computed frame has exactly this shape.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Fullscreen puts the window on the modulator head without decoration.
	// Default: true on deployed instruments; disable for bench work.
	Fullscreen bool `yaml:"fullscreen"`

	// Title is the window title when not fullscreen.
	Title string `yaml:"title"`
}

// PathsConfig locates the pattern library on disk.
type PathsConfig struct {
	// BasePatterns is the directory holding base pattern rasters. Uploaded
	// patterns live in its custom_patterns subdirectory.
	BasePatterns string `yaml:"base_patterns"`

	// FlatnessCorrections is the directory holding the per-wavelength
	// flatness correction rasters.
	FlatnessCorrections string `yaml:"flatness_corrections"`
}

// ComputeConfig contains the pattern computation settings.
type ComputeConfig struct {
	// Calibration maps wavelengths to quantization scale factors.
	Calibration CalibrationConfig `yaml:"calibration"`

	// AddFlatnessCorrection enables the per-wavelength flatness term.
	// Default: true
	AddFlatnessCorrection bool `yaml:"add_flatness_correction"`

	// SaveDebugRaster writes every computed frame to computed_pattern.png
	// next to the working directory. Debugging aid only.
	// Default: false
	SaveDebugRaster bool `yaml:"save_debug_raster"`

	// ImageExtensions are probed in order when resolving pattern files.
	// Entries are normalised to lowercase without leading dots.
	// Default: [png, bmp, tiff, tif]
	ImageExtensions []string `yaml:"image_extensions"`
}

// CalibrationConfig pairs wavelengths with scale factors by index.
type CalibrationConfig struct {
	// Wavelengths in nanometres. A computed wavelength with no exact entry
	// uses the nearest one.
	Wavelengths []uint32 `yaml:"wavelengths"`

	// ScaleFactors are the 8-bit output ranges, one per wavelength.
	ScaleFactors []float64 `yaml:"scale_factors"`
}

// DefaultsConfig is the device state presented before any peer commands
// arrive.
type DefaultsConfig struct {
	// Wavelength in nanometres. Replaced by the first laser report.
	// Default: 488
	Wavelength uint32 `yaml:"wavelength"`

	// Fresnel is the startup lens power. Default: 0 (no lens)
	Fresnel int `yaml:"fresnel"`

	// Pattern is the startup pattern selector, in the same shape the wire
	// protocol uses: {"spot": {...}}, {"custom": {...}} or a base pattern
	// family with properties.
	Pattern protocol.SelectorSpec `yaml:"pattern"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SLMAIM_SECTION_KEY
// For example: SLMAIM_INSTRUMENT_SERIAL, SLMAIM_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	cfg.Compute.ImageExtensions = normalizeExtensions(cfg.Compute.ImageExtensions)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Instrument: InstrumentConfig{
			Serial: "slm-dev",
			Name:   "bench",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "slm-aim",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Screen: ScreenConfig{
			Width:      1280,
			Height:     1024,
			Fullscreen: true,
			Title:      "slm-aim",
		},
		Paths: PathsConfig{
			BasePatterns:        "./data/base_patterns",
			FlatnessCorrections: "./data/flatness_corrections",
		},
		Compute: ComputeConfig{
			Calibration: CalibrationConfig{
				Wavelengths:  []uint32{488},
				ScaleFactors: []float64{255},
			},
			AddFlatnessCorrection: true,
			ImageExtensions:       []string{"png", "bmp", "tiff", "tif"},
		},
		Defaults: DefaultsConfig{
			Wavelength: 488,
			Fresnel:    0,
			Pattern:    protocol.SelectorSpec{Selector: protocol.Base{Family: "flatness"}},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SLMAIM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Instrument
	if v := os.Getenv("SLMAIM_INSTRUMENT_SERIAL"); v != "" {
		cfg.Instrument.Serial = v
	}

	// MQTT
	if v := os.Getenv("SLMAIM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SLMAIM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SLMAIM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Paths
	if v := os.Getenv("SLMAIM_PATHS_BASE_PATTERNS"); v != "" {
		cfg.Paths.BasePatterns = v
	}
	if v := os.Getenv("SLMAIM_PATHS_FLATNESS_CORRECTIONS"); v != "" {
		cfg.Paths.FlatnessCorrections = v
	}
}

// normalizeExtensions lowercases extensions and strips leading dots so both
// "PNG" and ".png" probe the same files.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Instrument validation
	if c.Instrument.Serial == "" {
		errs = append(errs, "instrument.serial is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// Screen validation
	if c.Screen.Width < 1 || c.Screen.Height < 1 {
		errs = append(errs, "screen.width and screen.height must be positive")
	}

	// Paths validation
	if c.Paths.BasePatterns == "" {
		errs = append(errs, "paths.base_patterns is required")
	}
	if c.Paths.FlatnessCorrections == "" {
		errs = append(errs, "paths.flatness_corrections is required")
	}

	// Calibration validation. The quantization scale lookup needs at least
	// one entry, and the two tables pair by index.
	if len(c.Compute.Calibration.Wavelengths) == 0 {
		errs = append(errs, "compute.calibration.wavelengths must have at least one entry")
	}
	if len(c.Compute.Calibration.Wavelengths) != len(c.Compute.Calibration.ScaleFactors) {
		errs = append(errs, "compute.calibration.wavelengths and scale_factors must have the same length")
	}
	for i, s := range c.Compute.Calibration.ScaleFactors {
		if s <= 0 {
			errs = append(errs, fmt.Sprintf("compute.calibration.scale_factors[%d] must be positive", i))
		}
	}

	if len(c.Compute.ImageExtensions) == 0 {
		errs = append(errs, "compute.image_extensions must have at least one entry")
	}

	// Defaults validation
	if c.Defaults.Wavelength == 0 {
		errs = append(errs, "defaults.wavelength is required")
	}
	if c.Defaults.Pattern.Selector == nil {
		errs = append(errs, "defaults.pattern is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
