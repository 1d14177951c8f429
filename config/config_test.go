package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"simpwm/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TimerDevice != "/dev/timer1" {
		t.Errorf("expected /dev/timer1, got %s", cfg.TimerDevice)
	}
	if len(cfg.TimerDevices) != 2 {
		t.Errorf("expected 2 timer devices, got %d", len(cfg.TimerDevices))
	}
	if cfg.AnalogFrequency != 490 {
		t.Errorf("expected 490 Hz, got %d", cfg.AnalogFrequency)
	}
	if len(cfg.SoftPWMPins) != core.MaxSoftPWMChannels {
		t.Errorf("expected %d soft pins, got %d", core.MaxSoftPWMChannels, len(cfg.SoftPWMPins))
	}
	if len(cfg.HardwarePWMPins) != 4 {
		t.Errorf("expected 4 hardware pins, got %d", len(cfg.HardwarePWMPins))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	data := []byte(`{
		"timer_device": "/dev/timer0",
		"analog_frequency": 1000,
		"soft_pwm_pins": [0, 1, 2],
		"trace": {"device": "/dev/ttyUSB0"}
	}`)

	cfg, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TimerDevice != "/dev/timer0" {
		t.Errorf("expected /dev/timer0, got %s", cfg.TimerDevice)
	}
	if cfg.AnalogFrequency != 1000 {
		t.Errorf("expected 1000 Hz, got %d", cfg.AnalogFrequency)
	}
	pins := cfg.SoftPins()
	if len(pins) != 3 || pins[2] != 2 {
		t.Errorf("unexpected soft pins %v", pins)
	}
	if cfg.Trace.Baud != defaultTraceBaud {
		t.Errorf("expected default baud, got %d", cfg.Trace.Baud)
	}
	if cfg.BaseClockHz != defaultBaseClockHz {
		t.Errorf("expected default base clock, got %d", cfg.BaseClockHz)
	}
}

func TestLoadYAML(t *testing.T) {
	data := []byte(`
timer_device: /dev/timer1
analog_frequency: 250
hardware_pwm_pins: [3]
soft_pwm_pins: [4, 7]
debug: true
`)

	cfg, err := LoadYAML(data)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if cfg.AnalogFrequency != 250 || !cfg.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
	if hw := cfg.HardwarePins(); len(hw) != 1 || hw[0] != 3 {
		t.Errorf("unexpected hardware pins %v", hw)
	}
}

func TestValidateRejects(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"unknown timer", "timer_device: /dev/timer7\n"},
		{"overlap", "soft_pwm_pins: [3]\nhardware_pwm_pins: [3]\n"},
		{"out of range", "soft_pwm_pins: [29]\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadYAML([]byte(tc.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "board.yml")
	if err := os.WriteFile(yamlPath, []byte("analog_frequency: 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFile(yaml) failed: %v", err)
	}
	if cfg.AnalogFrequency != 100 {
		t.Errorf("expected 100 Hz, got %d", cfg.AnalogFrequency)
	}

	jsonPath := filepath.Join(dir, "board.json")
	if err := os.WriteFile(jsonPath, []byte(`{"debug": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, err = LoadFile(jsonPath); err != nil || !cfg.Debug {
		t.Errorf("LoadFile(json) = %+v, %v", cfg, err)
	}

	txtPath := filepath.Join(dir, "board.txt")
	if err := os.WriteFile(txtPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(txtPath); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
