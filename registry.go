package tacklebox

import (
	"strings"
	"sync"
)

// PathSeparator delimits submenu segments in a registration path, as in
// "My Menu::Tools::Media".
const PathSeparator = "::"

// SplitPath splits a registration path into display-name segments.
// Segment whitespace is trimmed and empty segments produced by doubled or
// trailing separators are dropped, so "A::::B::" walks the same chain as
// "A::B".
func SplitPath(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	parts := strings.Split(path, PathSeparator)
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			segments = append(segments, trimmed)
		}
	}
	return segments
}

// JoinPath joins display-name segments back into a registration path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, PathSeparator)
}

func normalizePath(path string) string {
	return JoinPath(SplitPath(path)...)
}

// Registry maps submenu paths to ordered tool entries. It is an explicit
// object: callers own its lifetime and hand it to whatever rebuilds menus
// from it. There is no package-level instance. The empty path addresses
// the top-level menu itself.
//
// Order is preserved twice over: entries keep their registration order
// within a path, and paths keep the order of their first registration.
// Duplicate names under the same path are permitted and both render.
type Registry struct {
	mu      sync.RWMutex
	entries map[string][]ToolEntry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string][]ToolEntry)}
}

// Register appends a clickable entry to the list for path, creating the
// list if absent. A nil callback is allowed and renders as a disabled
// item.
func (r *Registry) Register(name string, do func(), path, icon string, enabled bool) {
	r.add(path, ToolEntry{Kind: EntryAction, Name: name, Do: do, Icon: icon, Enabled: enabled})
}

// RegisterSeparator appends a divider entry to path.
func (r *Registry) RegisterSeparator(path string) {
	r.add(path, ToolEntry{Kind: EntrySeparator})
}

// RegisterLabel appends a static text entry to path.
func (r *Registry) RegisterLabel(path, text string) {
	r.add(path, ToolEntry{Kind: EntryLabel, Name: text})
}

func (r *Registry) add(path string, entry ToolEntry) {
	key := normalizePath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = append(r.entries[key], entry)
}

// Paths returns the registered paths in first-registration order. The
// empty string, when present, addresses the top-level menu.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns a copy of the entries registered under path, in
// registration order.
func (r *Registry) Entries(path string) []ToolEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[normalizePath(path)]
	out := make([]ToolEntry, len(entries))
	copy(out, entries)
	return out
}

// Len returns the total number of registered entries across all paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, entries := range r.entries {
		n += len(entries)
	}
	return n
}

// Reset discards every registration. Declarative reloads call this before
// re-populating from the manifest so stale entries cannot survive a
// reload.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string][]ToolEntry)
	r.order = nil
}
