package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"courier/internal/domain"
)

// ConfigFilename is the optional CLI config file inside Home.
const ConfigFilename = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home     string               // config directory, e.g. $HOME/.courier
	RelayURL string               // relay base URL, e.g. http://127.0.0.1:8080
	BlobURL  string               // blob host base URL; defaults to RelayURL
	Level    domain.SecurityLevel // crypto profile for new endpoints
	LogLevel string               // zap level name; defaults to "warn"
	// SocialProfileURL is a profile API template containing {handle}. Empty
	// disables @handle lookups.
	SocialProfileURL string
	HTTP             *http.Client // optional; defaults to http.DefaultClient
}

// FileConfig mirrors config.yaml. Flags take precedence over it.
type FileConfig struct {
	Relay            string `yaml:"relay"`
	Blob             string `yaml:"blob"`
	Level            string `yaml:"level"`
	LogLevel         string `yaml:"log_level"`
	SocialProfileURL string `yaml:"social_profile_url"`
}

// LoadFileConfig reads home/config.yaml. A missing file yields a zero
// FileConfig.
func LoadFileConfig(home string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(filepath.Join(home, ConfigFilename))
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", ConfigFilename, err)
	}
	return fc, nil
}

// Merge fills every empty field of c from fc and then applies defaults.
func (c *Config) Merge(fc FileConfig) {
	if c.RelayURL == "" {
		c.RelayURL = fc.Relay
	}
	if c.BlobURL == "" {
		c.BlobURL = fc.Blob
	}
	if c.Level == "" {
		c.Level = domain.SecurityLevel(fc.Level)
	}
	if c.LogLevel == "" {
		c.LogLevel = fc.LogLevel
	}
	if c.SocialProfileURL == "" {
		c.SocialProfileURL = fc.SocialProfileURL
	}

	if c.BlobURL == "" {
		c.BlobURL = c.RelayURL
	}
	if c.Level == "" {
		c.Level = domain.SecurityRecommended
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}
