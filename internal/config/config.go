// Package config loads and saves the emulator's JSON configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all application configuration.
type Config struct {
	Window WindowConfig `json:"window"`
	Input  InputConfig  `json:"input"`
	Debug  DebugConfig  `json:"debug"`
	Paths  PathsConfig  `json:"paths"`

	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration.
type WindowConfig struct {
	Scale      int  `json:"scale"` // NES resolution multiplier
	Fullscreen bool `json:"fullscreen"`
	VSync      bool `json:"vsync"`
}

// InputConfig contains keyboard mappings for both controller ports.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// KeyMapping represents keyboard key mappings for an NES controller.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// DebugConfig contains debugging and development options.
type DebugConfig struct {
	ShowFPS       bool `json:"show_fps"`
	EnableLogging bool `json:"enable_logging"`
}

// PathsConfig contains file and directory paths.
type PathsConfig struct {
	ROMs   string `json:"roms"`
	Config string `json:"config"`
}

// New creates a configuration populated with default values.
func New() *Config {
	return &Config{
		Window: WindowConfig{
			Scale:      2,
			Fullscreen: false,
			VSync:      true,
		},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up: "W", Down: "S", Left: "A", Right: "D",
				A: "J", B: "K", Start: "Return", Select: "Space",
			},
			Player2Keys: KeyMapping{
				Up: "Up", Down: "Down", Left: "Left", Right: "Right",
				A: "N", B: "M", Start: "RShift", Select: "RCtrl",
			},
		},
		Debug: DebugConfig{
			ShowFPS:       false,
			EnableLogging: false,
		},
		Paths: PathsConfig{
			ROMs:   "./roms",
			Config: "./config",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. If the file does
// not exist, a default configuration is written to path and returned.
func LoadFromFile(path string) (*Config, error) {
	c := New()
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := c.SaveToFile(path); err != nil {
			return nil, err
		}
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.validate()
	c.configPath = path
	c.loaded = true
	return c, nil
}

// SaveToFile writes the configuration to path as indented JSON.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("config: create directory %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}

	c.configPath = path
	return nil
}

func (c *Config) validate() {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
}

// WindowResolution returns the window pixel dimensions for the
// configured scale factor, the NES's native 256x240 frame magnified.
func (c *Config) WindowResolution() (int, int) {
	return 256 * c.Window.Scale, 240 * c.Window.Scale
}

// IsLoaded reports whether the configuration was read from an existing file.
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return "./config/gones.json"
}
