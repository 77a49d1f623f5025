package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/smazurov/radionode/internal/device"
	"github.com/spf13/cobra"
)

type testOptions struct {
	Config string

	Port        string   `toml:"server.port" env:"TEST_PORT"`
	Simulate    bool     `toml:"radio.simulate" env:"TEST_SIMULATE"`
	Periods     int      `toml:"radio.periods" env:"TEST_PERIODS"`
	FrequencyHz float64  `toml:"radio.frequency_hz" env:"TEST_FREQUENCY_HZ"`
	Modules     []string `toml:"logging.enabled" env:"TEST_MODULES"`
	Untagged    string
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleTOML = `
[server]
port = ":9000"

[radio]
simulate = true
periods = 4
frequency_hz = 7074000.0
alsa_device = "hw:1,0"

[logging]
level = "debug"
stream = "warn"
enabled = ["stream", "api"]
`

func TestLoadConfigFromTOML(t *testing.T) {
	opts := &testOptions{Config: writeFile(t, sampleTOML), Untagged: "keep"}
	if err := LoadConfig(opts, nil); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := &testOptions{
		Config:      opts.Config,
		Port:        ":9000",
		Simulate:    true,
		Periods:     4,
		FrequencyHz: 7074000,
		Modules:     []string{"stream", "api"},
		Untagged:    "keep",
	}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("LoadConfig() = %+v, want %+v", opts, want)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv(EnvPrefix+"TEST_PORT", ":9100")
	t.Setenv(EnvPrefix+"TEST_FREQUENCY_HZ", "14074000.5")
	t.Setenv(EnvPrefix+"TEST_MODULES", "alsa, device")
	t.Setenv(EnvPrefix+"TEST_PERIODS", "8")

	opts := &testOptions{Config: writeFile(t, sampleTOML)}

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&opts.Periods, "periods", 2, "")
	if err := cmd.Flags().Set("periods", "3"); err != nil {
		t.Fatal(err)
	}

	if err := LoadConfig(opts, cmd); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if opts.Port != ":9100" {
		t.Errorf("Port = %q, env should override the file", opts.Port)
	}
	if opts.FrequencyHz != 14074000.5 {
		t.Errorf("FrequencyHz = %v", opts.FrequencyHz)
	}
	if !reflect.DeepEqual(opts.Modules, []string{"alsa", "device"}) {
		t.Errorf("Modules = %v", opts.Modules)
	}
	if opts.Periods != 3 {
		t.Errorf("Periods = %d, a changed flag must win", opts.Periods)
	}
	if !opts.Simulate {
		t.Error("Simulate should still come from the file")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	opts := &testOptions{Config: filepath.Join(t.TempDir(), "missing.toml")}
	if err := LoadConfig(opts, nil); err != nil {
		t.Errorf("LoadConfig(missing file) error = %v", err)
	}

	opts = &testOptions{Config: writeFile(t, "[server\nport = ")}
	if err := LoadConfig(opts, nil); err == nil {
		t.Error("LoadConfig(invalid TOML) should fail")
	}
}

func TestGetNestedValue(t *testing.T) {
	doc := map[string]any{
		"radio": map[string]any{"periods": int64(2)},
		"flat":  "x",
	}
	tests := []struct {
		path string
		want any
	}{
		{"radio.periods", int64(2)},
		{"flat", "x"},
		{"radio.missing", nil},
		{"flat.deeper", nil},
		{"nope.periods", nil},
	}
	for _, tt := range tests {
		if got := getNestedValue(doc, tt.path); got != tt.want {
			t.Errorf("getNestedValue(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"Port":             "port",
		"RadioFrequencyHz": "radio-frequency-hz",
		"LoggingLevel":     "logging-level",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	path := writeFile(t, `
[logging]
level = "warn"
format = "json"
alsa = "debug"

[logging.modules]
api = "error"
`)
	cfg := LoadLoggingConfig(path)
	if cfg.Level != "warn" || cfg.Format != "json" {
		t.Errorf("level/format = %q/%q", cfg.Level, cfg.Format)
	}
	want := map[string]string{"alsa": "debug", "api": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}

	def := LoadLoggingConfig("")
	if def.Level != "info" || def.Format != "text" {
		t.Errorf("defaults = %+v", def)
	}
}

func TestLoadRadioConfig(t *testing.T) {
	cfg, err := LoadRadioConfig(writeFile(t, sampleTOML))
	if err != nil {
		t.Fatalf("LoadRadioConfig() error = %v", err)
	}
	if cfg.ALSADevice != "hw:1,0" || cfg.Periods != 4 || cfg.FrequencyHz != 7074000 || !cfg.Simulate {
		t.Errorf("LoadRadioConfig() = %+v", cfg)
	}
	if cfg.SampleRate != 89286 || cfg.PeriodFrames != 2048 {
		t.Errorf("unset keys should keep defaults, got rate=%d period=%d", cfg.SampleRate, cfg.PeriodFrames)
	}

	missing, err := LoadRadioConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil || missing != DefaultRadio() {
		t.Errorf("LoadRadioConfig(missing) = %+v, %v", missing, err)
	}

	if _, err := LoadRadioConfig(writeFile(t, "[radio]\nfrequency_hz = -1.0\n")); err == nil {
		t.Error("negative frequency should be rejected")
	}
}

func TestRadioProfileOverlay(t *testing.T) {
	cfg := RadioConfig{PeriodFrames: 1024, Periods: 4, Playback: true}
	p := cfg.Profile(device.TujaSDR())

	if p.PeriodFrames != 1024 || p.Periods != 4 || !p.Playback {
		t.Errorf("Profile() = %+v", p)
	}
	if p.SampleRate != 89286 {
		t.Errorf("SampleRate = %d, zero config must keep the base", p.SampleRate)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("overlaid profile invalid: %v", err)
	}
}
