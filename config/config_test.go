package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ToolbarTitle != DefaultToolbarTitle {
		t.Errorf("ToolbarTitle = %q, want %q", cfg.ToolbarTitle, DefaultToolbarTitle)
	}
	if cfg.EnableToolbarSettings {
		t.Error("EnableToolbarSettings should default to false")
	}
}

func TestLoad_LegacyKeyNames(t *testing.T) {
	path := writeConfigFile(t, `{
  "toolbar_title": "My Tools",
  "enable_toolbar_settings": true,
  "Other_addon_names": ["review_heatmap", "1771074083"],
  "addon_emojis": {"review_heatmap": "🔥"},
  "addon_nicknames": {"1771074083": "Heatmap"},
  "default_icon": "gear.png",
  "default_submenu": "Extras"
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ToolbarTitle != "My Tools" {
		t.Errorf("ToolbarTitle = %q, want %q", cfg.ToolbarTitle, "My Tools")
	}
	if !cfg.EnableToolbarSettings {
		t.Error("EnableToolbarSettings should be true")
	}
	if len(cfg.OtherAddonNames) != 2 || cfg.OtherAddonNames[0] != "review_heatmap" {
		t.Errorf("OtherAddonNames = %v", cfg.OtherAddonNames)
	}
	if cfg.AddonEmojis["review_heatmap"] != "🔥" {
		t.Errorf("AddonEmojis = %v", cfg.AddonEmojis)
	}
	if cfg.AddonNicknames["1771074083"] != "Heatmap" {
		t.Errorf("AddonNicknames = %v", cfg.AddonNicknames)
	}
	if cfg.DefaultIcon != "gear.png" || cfg.DefaultSubmenu != "Extras" {
		t.Errorf("defaults = %q / %q", cfg.DefaultIcon, cfg.DefaultSubmenu)
	}
}

func TestLoad_BlankTitleFallsBack(t *testing.T) {
	path := writeConfigFile(t, `{"toolbar_title": "   "}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ToolbarTitle != DefaultToolbarTitle {
		t.Errorf("ToolbarTitle = %q, want default for blank value", cfg.ToolbarTitle)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := writeConfigFile(t, `{"toolbar_title": `)

	if _, err := Load(path); err == nil {
		t.Error("Load() of malformed config should fail")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Config{
		ToolbarTitle:          "Round Trip",
		EnableToolbarSettings: true,
		OtherAddonNames:       []string{"a", "b"},
		DefaultSubmenu:        "Extras",
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ToolbarTitle != cfg.ToolbarTitle || !got.EnableToolbarSettings ||
		len(got.OtherAddonNames) != 2 || got.DefaultSubmenu != "Extras" {
		t.Errorf("round trip changed config: %+v", got)
	}
}
