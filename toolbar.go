package tacklebox

import "sync"

// Toolbar binds a Registry to a host menu and rebuilds after every
// mutation, which is the contract host startup hooks expect: register an
// entry, see the change. Its lifetime is scoped to whatever session
// object created it; there is no package-level toolbar.
type Toolbar struct {
	mu   sync.Mutex
	reg  *Registry
	host MenuHost
	opts RebuildOptions
}

// NewToolbar creates a toolbar over its own empty registry. The first
// rebuild happens on the first mutation, so constructing a toolbar does
// not touch the host.
func NewToolbar(host MenuHost, opts RebuildOptions) *Toolbar {
	return &Toolbar{reg: NewRegistry(), host: host, opts: opts}
}

// Registry exposes the underlying registry for reads. Mutating it
// directly skips the automatic rebuild; call Rebuild afterwards.
func (t *Toolbar) Registry() *Registry { return t.reg }

// Title returns the toolbar's top-level menu title.
func (t *Toolbar) Title() string { return t.opts.Title }

// Register appends a clickable entry under path and rebuilds the menu.
func (t *Toolbar) Register(name string, do func(), path, icon string, enabled bool) {
	t.reg.Register(name, do, path, icon, enabled)
	if t.opts.Events != nil {
		t.opts.Events(NewEvent(EventEntryRegistered, "").
			WithPath(path).
			WithPayload("name", name))
	}
	t.Rebuild()
}

// RegisterSeparator appends a divider under path and rebuilds the menu.
func (t *Toolbar) RegisterSeparator(path string) {
	t.reg.RegisterSeparator(path)
	t.Rebuild()
}

// RegisterLabel appends a static text entry under path and rebuilds the
// menu.
func (t *Toolbar) RegisterLabel(path, text string) {
	t.reg.RegisterLabel(path, text)
	t.Rebuild()
}

// Reset discards every registration and rebuilds the now-empty menu.
func (t *Toolbar) Reset() {
	t.reg.Reset()
	t.Rebuild()
}

// Rebuild rematerializes the host menu from the current registry
// contents.
func (t *Toolbar) Rebuild() {
	t.mu.Lock()
	defer t.mu.Unlock()
	Rebuild(t.reg, t.host, t.opts)
}
