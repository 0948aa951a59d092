package tacklebox

import (
	"path/filepath"
	"strings"
)

// ResourcePrefix marks icon references served by the host's own resource
// system rather than the filesystem, e.g. ":/icons/gears.png".
const ResourcePrefix = ":"

// resourceAssetsPrefix is the one resource spelling that maps back onto
// the filesystem: ":assets/x.png" loads from the real assets directory.
const resourceAssetsPrefix = ResourcePrefix + "assets/"

// IconResolver maps icon references from manifest records to loadable
// locations. Resolve is a pure function of its input; whether the
// resolved file exists is the renderer's problem, and a missing file
// simply renders without an icon.
type IconResolver struct {
	// PluginDir is the plugin's own installation directory.
	PluginDir string

	// AssetsDir backs ":assets/" references. Empty defaults to
	// PluginDir/assets.
	AssetsDir string
}

// Resolve applies the first matching rule:
//
//	""                     -> "" (no icon)
//	absolute path          -> unchanged
//	":assets/<rest>"       -> <assets dir>/<rest>
//	":<anything>"          -> unchanged (host resource reference)
//	"assets/…", "icons/…"  -> <plugin dir>/<path>
//	anything else          -> <plugin dir>/icons/<path>
func (r IconResolver) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, resourceAssetsPrefix) {
		return filepath.Join(r.assetsDir(), strings.TrimPrefix(path, resourceAssetsPrefix))
	}
	if strings.HasPrefix(path, ResourcePrefix) {
		return path
	}
	if strings.HasPrefix(path, "assets/") || strings.HasPrefix(path, "icons/") {
		return filepath.Join(r.PluginDir, path)
	}
	return filepath.Join(r.PluginDir, "icons", path)
}

func (r IconResolver) assetsDir() string {
	if r.AssetsDir != "" {
		return r.AssetsDir
	}
	return filepath.Join(r.PluginDir, "assets")
}
