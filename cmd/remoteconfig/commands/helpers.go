package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/systmms/remoteconfig/pkg/store"
)

// Options carries the persistent CLI flags shared by all commands.
type Options struct {
	ConfigFile string
	Region     string
	Path       string
	Verbose    bool
}

// loadSettings resolves the store settings: an optional .env file,
// then REMOTECONFIG_* environment variables, then a YAML settings
// file, then flag overrides, in increasing precedence.
func loadSettings(opts *Options) (store.Settings, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	settings, err := store.SettingsFromEnv()
	if err != nil {
		return store.Settings{}, fmt.Errorf("failed to read environment settings: %w", err)
	}

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return store.Settings{}, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return store.Settings{}, fmt.Errorf("failed to parse settings file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.Region != "" {
		settings.Region = opts.Region
	}
	if opts.Path != "" {
		settings.Path = opts.Path
	}
	if opts.Verbose {
		settings.Verbose = true
	}

	return settings, nil
}
