package tacklebox

// Item is one clickable menu leaf handed to the host. Icon is already
// resolved; an empty Icon means no icon.
type Item struct {
	Title   string
	Icon    string
	Enabled bool
	Do      func()
}

// Menu is a single menu container in the host's tree. Implementations
// append children in call order; the rebuild relies on that to preserve
// registration order.
type Menu interface {
	// AddMenu appends a child submenu titled title and returns it.
	AddMenu(title string) Menu

	// AddItem appends a clickable item.
	AddItem(item Item)

	// AddSeparator appends a visual divider.
	AddSeparator()

	// AddLabel appends a static, non-interactive line of text.
	AddLabel(text string)
}

// MenuHost is the host surface that owns top-level menus. ReplaceMenu
// must drop any previously materialized menu with the same title before
// returning a fresh, empty root, so repeated rebuilds cannot accumulate
// stale widgets.
type MenuHost interface {
	ReplaceMenu(title string) Menu
}

// RebuildOptions configure one rebuild pass.
type RebuildOptions struct {
	// Title is the top-level menu title owned by the rebuild.
	Title string

	// Icons resolves entry icon references. Nil resolves every icon to
	// the empty string.
	Icons *IconResolver

	// Events receives EventMenuRebuilt. Nil drops it.
	Events EventHandler
}

// Rebuild materializes the registry into the host's menu tree. It is a
// deterministic function of the registry contents and options: segments
// are walked root to leaf, each unique path prefix gets exactly one
// submenu node shared by all paths through it, and entries render in
// registration order with duplicate names kept.
//
// Rebuild never fails. A nil callback renders as a disabled item, icon
// references resolve through the pure resolver or degrade to no icon,
// and separator and label entries render as their widget kinds.
func Rebuild(reg *Registry, host MenuHost, opts RebuildOptions) {
	if reg == nil || host == nil {
		return
	}

	root := host.ReplaceMenu(opts.Title)
	nodes := map[string]Menu{"": root}

	items := 0
	paths := reg.Paths()
	for _, path := range paths {
		parent := materialize(nodes, root, path)
		for _, entry := range reg.Entries(path) {
			switch entry.Kind {
			case EntrySeparator:
				parent.AddSeparator()
			case EntryLabel:
				parent.AddLabel(entry.Name)
			default:
				parent.AddItem(Item{
					Title:   entry.Name,
					Icon:    resolveIcon(opts.Icons, entry.Icon),
					Enabled: entry.Enabled && entry.Do != nil,
					Do:      entry.Do,
				})
			}
			items++
		}
	}

	if opts.Events != nil {
		opts.Events(NewEvent(EventMenuRebuilt, "").
			WithPayload("title", opts.Title).
			WithPayload("paths", len(paths)).
			WithPayload("items", items))
	}
}

// materialize walks the segments of path root to leaf, creating each
// missing prefix node and reusing the ones created earlier in this
// rebuild pass.
func materialize(nodes map[string]Menu, root Menu, path string) Menu {
	parent := root
	prefix := ""
	for _, segment := range SplitPath(path) {
		if prefix == "" {
			prefix = segment
		} else {
			prefix += PathSeparator + segment
		}
		node, ok := nodes[prefix]
		if !ok {
			node = parent.AddMenu(segment)
			nodes[prefix] = node
		}
		parent = node
	}
	return parent
}

func resolveIcon(icons *IconResolver, ref string) string {
	if icons == nil {
		return ""
	}
	return icons.Resolve(ref)
}
