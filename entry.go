package tacklebox

// EntryKind identifies what a registered entry renders as.
type EntryKind string

const (
	// EntryAction is a clickable menu item bound to a callback.
	EntryAction EntryKind = "action"

	// EntrySeparator is a visual divider between items.
	EntrySeparator EntryKind = "separator"

	// EntryLabel is a static, non-interactive line of text.
	EntryLabel EntryKind = "label"
)

// String returns the string representation of the EntryKind.
func (k EntryKind) String() string { return string(k) }

// ToolEntry is one registered menu entry: a display name, an activation
// callback, an optional icon reference, and an enabled flag. Entries are
// value types; a registry copy is the registration of record until the
// next Reset.
type ToolEntry struct {
	Kind    EntryKind
	Name    string
	Do      func()
	Icon    string
	Enabled bool
}
