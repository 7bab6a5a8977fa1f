package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-tombola/geometry"
	"go-tombola/midi"
)

// DefaultNote fills note slots added when the tombola grows
const DefaultNote = midi.C

// Limit is an optional cap
type Limit struct {
	Enabled bool `json:"enabled"`
	Value   int  `json:"value"`
}

// FixedVelocity overrides the impact velocity of every note
type FixedVelocity struct {
	Enabled bool  `json:"enabled"`
	Value   uint8 `json:"value"`
}

// FixedLength overrides the impact-derived note length
type FixedLength struct {
	Enabled bool `json:"enabled"`
	Millis  int  `json:"ms"`
}

func (f FixedLength) Duration() time.Duration {
	return time.Duration(f.Millis) * time.Millisecond
}

// Settings is the live state edited by the settings panel and read by the
// simulation every frame
type Settings struct {
	Shape      geometry.Shape `json:"shape"`
	Spin       float64        `json:"spin"`
	Bounciness float64        `json:"bounciness"`
	Gravity    float64        `json:"gravity"`

	MaxBalls   Limit `json:"maxBalls"`
	MaxBounces Limit `json:"maxBounces"`

	Notes         []midi.Note   `json:"notes"`
	FixedVelocity FixedVelocity `json:"fixedVelocity"`
	FixedLength   FixedLength   `json:"fixedLength"`
}

// DefaultSettings returns the settings a fresh install starts with
func DefaultSettings() Settings {
	return Settings{
		Shape:         geometry.Hexagon,
		Spin:          1.5,
		Bounciness:    1.0,
		Gravity:       1.0,
		MaxBalls:      Limit{Enabled: false, Value: 10},
		MaxBounces:    Limit{Enabled: false, Value: 5},
		Notes:         []midi.Note{midi.C, midi.D, midi.E, midi.F, midi.G, midi.A},
		FixedVelocity: FixedVelocity{Enabled: false, Value: 64},
		FixedLength:   FixedLength{Enabled: false, Millis: 100},
	}
}

// ResizeNotes pads the note list with DefaultNote or truncates it to n
func (s *Settings) ResizeNotes(n int) {
	if n < 0 {
		n = 0
	}
	for len(s.Notes) < n {
		s.Notes = append(s.Notes, DefaultNote)
	}
	s.Notes = s.Notes[:n]
}

// NoteFor returns the note assigned to pad index i
func (s *Settings) NoteFor(i int) midi.Note {
	if i < 0 || i >= len(s.Notes) {
		return DefaultNote
	}
	return s.Notes[i]
}

// OutputMode selects where notes go
type OutputMode string

const (
	OutputAuto  OutputMode = "auto"  // port when connected, built-in synth otherwise
	OutputPort  OutputMode = "port"  // MIDI port only
	OutputSynth OutputMode = "synth" // built-in synth only
	OutputNone  OutputMode = "none"
)

// OutputConfig selects MIDI devices
type OutputConfig struct {
	Mode       OutputMode `json:"mode"`
	PortName   string     `json:"portName,omitempty"`
	Preferred  []string   `json:"preferred,omitempty"`
	Excluded   []string   `json:"excluded,omitempty"`
	Input      bool       `json:"input"`
	InputPort  string     `json:"inputPort,omitempty"`
	RecordPath string     `json:"recordPath,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette  string `json:"palette,omitempty"` // GPL file; empty = built-in
	BallSize string `json:"ballSize,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Settings Settings     `json:"settings"`
	Output   OutputConfig `json:"output"`
	UI       UIConfig     `json:"ui,omitempty"`
	Debug    bool         `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Settings: DefaultSettings(),
		Output: OutputConfig{
			Mode:      OutputAuto,
			Preferred: []string{"IAC", "Synth", "FluidSynth"},
			Excluded:  []string{"Midi Through", "Through Port", "Dummy"},
			Input:     true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-tombola"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Fields missing from the file keep
// their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.Settings.ResizeNotes(cfg.Settings.Shape.NumSides())
	if cfg.Output.Mode == "" {
		cfg.Output.Mode = OutputAuto
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
