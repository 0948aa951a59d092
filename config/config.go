// Package config loads the toolbar's global configuration record and the
// YAML session file that describes the host environment a CLI invocation
// operates on.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultToolbarTitle is used when toolbar_title is missing or blank.
const DefaultToolbarTitle = "Custom Tools"

// DefaultConfigFileName is the global config file name used when only a
// directory is known.
const DefaultConfigFileName = "config.json"

// Config is the global configuration record. The JSON key names are part
// of the on-disk contract carried over from earlier releases, including
// the capitalized Other_addon_names.
type Config struct {
	// ToolbarTitle is the top-level menu title.
	ToolbarTitle string `json:"toolbar_title"`

	// EnableToolbarSettings gates the per-add-on configuration entries.
	EnableToolbarSettings bool `json:"enable_toolbar_settings"`

	// OtherAddonNames lists add-on identifiers whose configuration
	// dialogs get menu entries when EnableToolbarSettings is set.
	OtherAddonNames []string `json:"Other_addon_names"`

	// AddonEmojis maps add-on identifiers to an emoji appended to their
	// display labels.
	AddonEmojis map[string]string `json:"addon_emojis"`

	// AddonNicknames maps add-on identifiers to replacement display
	// labels.
	AddonNicknames map[string]string `json:"addon_nicknames"`

	// DefaultIcon and DefaultSubmenu prefill new records created in the
	// editor. Loading renders records exactly as stored.
	DefaultIcon    string `json:"default_icon"`
	DefaultSubmenu string `json:"default_submenu"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{ToolbarTitle: DefaultToolbarTitle}
}

// Load reads a JSON config file. A missing file yields Default(); a
// present but malformed file is an error, since silently ignoring it
// would render a menu the user did not configure.
func Load(path string) (Config, error) {
	// #nosec G304 -- path from caller.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if strings.TrimSpace(cfg.ToolbarTitle) == "" {
		cfg.ToolbarTitle = DefaultToolbarTitle
	}
	return cfg, nil
}

// Save writes the configuration as indented JSON, creating the directory
// if needed.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: write %q: %w", path, err)
	}
	return nil
}
