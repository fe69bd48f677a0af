// internal/config/config.go
//
// This package handles configuration and the ~/.morpho directory structure.
// Every learner machine gets a .morpho/ folder in the home directory holding
// the settings file, the progress database, and session journals.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppDir is the name of the directory we create in the user's home.
const AppDir = ".morpho"

const defaultSettingsYAML = `# morpho settings
version: 1

# Gemini model used for lesson generation and assessment.
model: gemini-3-flash-preview

# Show Vietnamese translations alongside English content.
bilingual: true
`

// Settings models ~/.morpho/config.yaml.
type Settings struct {
	Version   int    `yaml:"version"`
	Model     string `yaml:"model"`
	Bilingual bool   `yaml:"bilingual"`
}

// Config holds the runtime configuration for the app.
type Config struct {
	// Root is the ~/.morpho directory.
	Root string

	// APIKey is the Gemini key, taken from the GEMINI_API_KEY environment
	// variable (a .env file in the working directory is honored too).
	APIKey string

	Settings Settings
}

// New resolves the app directory under the given home directory, creates the
// structure on first run, and loads settings. An empty home falls back to
// os.UserHomeDir.
func New(home string) (*Config, error) {
	if home == "" {
		var err error
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home: %w", err)
		}
	}

	cfg := &Config{
		Root:     filepath.Join(home, AppDir),
		APIKey:   os.Getenv("GEMINI_API_KEY"),
		Settings: defaultSettings(),
	}

	if err := os.MkdirAll(cfg.LogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("config: create app dir: %w", err)
	}
	if err := cfg.ensureSettingsFile(); err != nil {
		return nil, err
	}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SettingsPath returns the on-disk location of the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Root, "config.yaml")
}

// DatabasePath returns the location of the progress database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Root, "progress.db")
}

// LogsDir returns the directory holding session journals.
func (c *Config) LogsDir() string {
	return filepath.Join(c.Root, "logs")
}

// JournalPath returns the session journal file.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "session.log")
}

// SetBilingual updates the bilingual preference and persists it.
func (c *Config) SetBilingual(on bool) error {
	c.Settings.Bilingual = on
	return c.saveSettings()
}

func (c *Config) ensureSettingsFile() error {
	_, err := os.Stat(c.SettingsPath())
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: stat %s: %w", c.SettingsPath(), err)
	}
	if err := os.WriteFile(c.SettingsPath(), []byte(defaultSettingsYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", c.SettingsPath(), err)
	}
	return nil
}

func (c *Config) loadSettings() error {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.SettingsPath(), err)
	}

	var parsed Settings
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.SettingsPath(), err)
	}

	parsed.normalize()
	c.Settings = parsed
	return nil
}

func (c *Config) saveSettings() error {
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("config: encode settings: %w", err)
	}
	if err := os.WriteFile(c.SettingsPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", c.SettingsPath(), err)
	}
	return nil
}

func defaultSettings() Settings {
	return Settings{
		Version:   1,
		Model:     "gemini-3-flash-preview",
		Bilingual: true,
	}
}

func (s *Settings) normalize() {
	if s.Version == 0 {
		s.Version = 1
	}
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = "gemini-3-flash-preview"
	}
}
