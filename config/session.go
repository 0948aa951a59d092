package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	projectSessionName = "tacklebox.yaml"
	homeSessionName    = "config.yaml"
	homeSessionDir     = ".tacklebox"
)

// Session describes the host environment one invocation operates on:
// where the collection database, media directory, plugin files, and
// manifest live. Values are environment-expanded and relative paths
// resolve against the session file's directory.
type Session struct {
	// Profile names the host profile, used in report file names.
	Profile string `yaml:"profile,omitempty"`

	// Collection is the path to the collection SQLite database.
	Collection string `yaml:"collection,omitempty"`

	// MediaDir is the collection's media directory.
	MediaDir string `yaml:"media_dir,omitempty"`

	// PluginDir anchors relative icon references.
	PluginDir string `yaml:"plugin_dir,omitempty"`

	// ToolsFile is the manifest path. Empty falls back to the default
	// store location.
	ToolsFile string `yaml:"tools_file,omitempty"`

	// ConfigFile is the global JSON config path.
	ConfigFile string `yaml:"config_file,omitempty"`

	// ReportsDir receives scan report files. BackupsDir receives the
	// extra backup copies some scans write.
	ReportsDir string `yaml:"reports_dir,omitempty"`
	BackupsDir string `yaml:"backups_dir,omitempty"`

	// OTLPEndpoint enables trace export when set, e.g. "localhost:4318".
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`

	// Scans declares cron-driven maintenance runs for the scheduler.
	Scans []ScanSchedule `yaml:"scans,omitempty"`
}

// ScanSchedule declares one scheduled maintenance scan.
type ScanSchedule struct {
	// Name identifies the schedule in logs and events.
	Name string `yaml:"name"`

	// Action is the table reference to invoke, e.g. "media.export_missing".
	Action string `yaml:"action"`

	// Cron is a standard 5-field cron expression, evaluated in UTC.
	Cron string `yaml:"cron"`
}

// DiscoverSessionPath resolves the session file location with
// first-match semantics: the explicit path, then ./tacklebox.yaml, then
// ~/.tacklebox/config.yaml. found is false when no candidate exists,
// which is not an error.
func DiscoverSessionPath(explicitPath string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, fmt.Errorf("resolve working directory: %w", err)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("resolve user home: %w", err)
	}
	return DiscoverSessionPathFrom(explicitPath, cwd, homeDir)
}

// DiscoverSessionPathFrom is a testable variant of DiscoverSessionPath.
func DiscoverSessionPathFrom(explicitPath, cwd, homeDir string) (string, bool, error) {
	candidates := make([]string, 0, 3)
	if clean := strings.TrimSpace(explicitPath); clean != "" {
		candidates = append(candidates, filepath.Clean(clean))
	} else {
		candidates = append(candidates, filepath.Join(cwd, projectSessionName))
		candidates = append(candidates, filepath.Join(homeDir, homeSessionDir, homeSessionName))
	}

	for i, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			// An explicit path that does not exist is an error.
			if i == 0 && strings.TrimSpace(explicitPath) != "" {
				return "", false, fmt.Errorf("session file %q not found", candidate)
			}
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("checking session path %q: %w", candidate, err)
		}
	}
	return "", false, nil
}

// LoadSession reads a YAML session file, expands environment variables
// in its values, and resolves relative paths against the file's
// directory.
func LoadSession(path string) (Session, error) {
	// #nosec G304 -- path resolved from explicit local config discovery.
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("reading session file %q: %w", path, err)
	}

	var sess Session
	if err := yaml.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("parsing session file %q: %w", path, err)
	}

	baseDir := filepath.Dir(path)
	sess.Profile = strings.TrimSpace(os.ExpandEnv(sess.Profile))
	sess.Collection = resolveSessionPath(baseDir, sess.Collection)
	sess.MediaDir = resolveSessionPath(baseDir, sess.MediaDir)
	sess.PluginDir = resolveSessionPath(baseDir, sess.PluginDir)
	sess.ToolsFile = resolveSessionPath(baseDir, sess.ToolsFile)
	sess.ConfigFile = resolveSessionPath(baseDir, sess.ConfigFile)
	sess.ReportsDir = resolveSessionPath(baseDir, sess.ReportsDir)
	sess.BackupsDir = resolveSessionPath(baseDir, sess.BackupsDir)
	sess.OTLPEndpoint = strings.TrimSpace(os.ExpandEnv(sess.OTLPEndpoint))
	return sess, nil
}

func resolveSessionPath(baseDir, value string) string {
	expanded := strings.TrimSpace(os.ExpandEnv(value))
	if expanded == "" || filepath.IsAbs(expanded) {
		return expanded
	}
	return filepath.Join(baseDir, expanded)
}
