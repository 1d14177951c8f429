// Package config loads the soft-PWM board configuration from JSON or YAML.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"simpwm/board"
	"simpwm/core"
)

// ErrUnknownFormat is returned by LoadFile for unrecognised extensions
var ErrUnknownFormat = errors.New("unknown config format")

// Config describes one board setup
type Config struct {
	// TimerDevice is the channel claimed by the soft-PWM engine
	TimerDevice string `json:"timer_device" yaml:"timer_device"`

	// TimerDevices lists every timer channel; the index is the channel number
	TimerDevices []string `json:"timer_devices" yaml:"timer_devices"`

	// AnalogFrequency is the analogWrite carrier in Hz
	AnalogFrequency uint32 `json:"analog_frequency" yaml:"analog_frequency"`

	// BaseClockHz is the timer counter clock used for tick conversion
	BaseClockHz uint32 `json:"base_clock_hz" yaml:"base_clock_hz"`

	// SoftPWMPins are the pins given an engine slot
	SoftPWMPins []uint32 `json:"soft_pwm_pins" yaml:"soft_pwm_pins"`

	// HardwarePWMPins are routed to the PWM peripheral
	HardwarePWMPins []uint32 `json:"hardware_pwm_pins" yaml:"hardware_pwm_pins"`

	Debug bool `json:"debug" yaml:"debug"`

	Trace TraceConfig `json:"trace" yaml:"trace"`
}

// TraceConfig selects the serial trace link. An empty Device disables it.
type TraceConfig struct {
	Device string `json:"device" yaml:"device"`
	Baud   int    `json:"baud" yaml:"baud"`
}

const (
	defaultBaseClockHz = 156000000
	defaultTraceBaud   = 115200
)

// Load parses a JSON configuration and applies defaults
func Load(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadYAML parses a YAML configuration and applies defaults
func LoadYAML(yamlData []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(yamlData, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads path and parses it by extension (.json, .yaml, .yml)
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Load(data)
	case ".yaml", ".yml":
		return LoadYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// applyDefaults fills in missing values with the board defaults
func applyDefaults(cfg *Config) {
	if len(cfg.TimerDevices) == 0 {
		cfg.TimerDevices = append([]string(nil), core.DefaultTimerPaths...)
	}
	if cfg.TimerDevice == "" {
		cfg.TimerDevice = core.DefaultSoftPWMTimer
	}
	if cfg.AnalogFrequency == 0 {
		cfg.AnalogFrequency = 490
	}
	if cfg.BaseClockHz == 0 {
		cfg.BaseClockHz = defaultBaseClockHz
	}
	if cfg.SoftPWMPins == nil {
		cfg.SoftPWMPins = pinsToUint(board.SoftPWMPins())
	}
	if cfg.HardwarePWMPins == nil {
		cfg.HardwarePWMPins = pinsToUint(board.HardwarePWMPins)
	}
	if cfg.Trace.Baud == 0 {
		cfg.Trace.Baud = defaultTraceBaud
	}
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	found := false
	for _, path := range c.TimerDevices {
		if path == c.TimerDevice {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("timer_device %q not in timer_devices", c.TimerDevice)
	}
	if len(c.SoftPWMPins) > core.MaxSoftPWMChannels {
		return fmt.Errorf("soft_pwm_pins: %d pins, at most %d", len(c.SoftPWMPins), core.MaxSoftPWMChannels)
	}
	hw := make(map[uint32]bool, len(c.HardwarePWMPins))
	for _, pin := range c.HardwarePWMPins {
		hw[pin] = true
	}
	for _, pin := range c.SoftPWMPins {
		if pin >= board.NumDigitalPins {
			return fmt.Errorf("soft_pwm_pins: pin %d out of range", pin)
		}
		if hw[pin] {
			return fmt.Errorf("pin %d is both soft and hardware PWM", pin)
		}
	}
	return nil
}

// SoftPins returns SoftPWMPins as core pins
func (c *Config) SoftPins() []core.Pin {
	return uintToPins(c.SoftPWMPins)
}

// HardwarePins returns HardwarePWMPins as core pins
func (c *Config) HardwarePins() []core.Pin {
	return uintToPins(c.HardwarePWMPins)
}

// DefaultConfig returns the Spresense main-board configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func pinsToUint(pins []core.Pin) []uint32 {
	out := make([]uint32, len(pins))
	for i, p := range pins {
		out[i] = uint32(p)
	}
	return out
}

func uintToPins(vals []uint32) []core.Pin {
	out := make([]core.Pin, len(vals))
	for i, v := range vals {
		out[i] = core.Pin(v)
	}
	return out
}
