// Package manifest defines the declarative tool records a toolbar is
// loaded from and the JSON file store that persists them.
//
// The on-disk form is a JSON array in file order. Array order is menu
// order, so every edit operation here is positional.
package manifest

import "strings"

// Record type values stored in the "type" field. Plain action records
// leave the field empty.
const (
	TypeSeparator = "separator"
	TypeLabel     = "label"
)

// DividerName is the canonical display name separator records carry in
// the file. Legacy spellings in dividerAliases normalize to it on load.
const DividerName = "———"

var dividerAliases = map[string]struct{}{
	"---":   {},
	"—":     {},
	"——":    {},
	"———":   {},
	"————":  {},
	"—————": {},
}

// IsDividerName reports whether name is one of the accepted divider
// spellings.
func IsDividerName(name string) bool {
	_, ok := dividerAliases[strings.TrimSpace(name)]
	return ok
}

// Record is one element of the tool manifest array. Field names are part
// of the on-disk contract.
type Record struct {
	// Type marks separator and label records. Empty means action.
	Type string `json:"type,omitempty"`

	// Name is the display name shown in the menu.
	Name string `json:"name"`

	// Module and Function form the action reference resolved against the
	// registration table.
	Module   string `json:"module,omitempty"`
	Function string `json:"function,omitempty"`

	// Submenu is the "::"-delimited path the entry registers under.
	// Empty registers at the top level.
	Submenu string `json:"submenu,omitempty"`

	// Icon is an icon reference resolved by tacklebox.IconResolver.
	Icon string `json:"icon,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

// IsSeparator reports whether the record renders as a divider, either by
// explicit type or by a divider-alias name.
func (r Record) IsSeparator() bool {
	return r.Type == TypeSeparator || IsDividerName(r.Name)
}

// IsLabel reports whether the record renders as a static text entry.
func (r Record) IsLabel() bool {
	return r.Type == TypeLabel
}

// IsAction reports whether the record is a plain clickable tool.
func (r Record) IsAction() bool {
	return !r.IsSeparator() && !r.IsLabel()
}

// EnabledOrDefault returns the enabled flag, defaulting to true when the
// field was omitted.
func (r Record) EnabledOrDefault() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// Ref returns the record's action reference, "module.function". Empty
// when either part is missing.
func (r Record) Ref() string {
	module := strings.TrimSpace(r.Module)
	function := strings.TrimSpace(r.Function)
	if module == "" || function == "" {
		return ""
	}
	return module + "." + function
}

// Normalized returns the record with whitespace trimmed and divider
// aliases canonicalized: any alias spelling becomes a separator-typed
// record named DividerName with its action fields cleared.
func (r Record) Normalized() Record {
	r.Type = strings.TrimSpace(r.Type)
	r.Name = strings.TrimSpace(r.Name)
	r.Module = strings.TrimSpace(r.Module)
	r.Function = strings.TrimSpace(r.Function)
	r.Submenu = strings.TrimSpace(r.Submenu)
	r.Icon = strings.TrimSpace(r.Icon)

	if r.IsSeparator() {
		r.Type = TypeSeparator
		r.Name = DividerName
		r.Module = ""
		r.Function = ""
		r.Icon = ""
	}
	return r
}

// Validate returns a human-readable issue for action records missing a
// required field, or "" when the record is well-formed. Separator and
// label records have no required fields beyond what their kind implies.
func (r Record) Validate() string {
	if !r.IsAction() {
		if r.IsLabel() && r.Name == "" {
			return "label record has no name"
		}
		return ""
	}
	switch {
	case r.Name == "":
		return "record has no name"
	case r.Module == "":
		return "record has no module"
	case r.Function == "":
		return "record has no function"
	}
	return ""
}

// NewDivider returns a canonical separator record.
func NewDivider() Record {
	return Record{Type: TypeSeparator, Name: DividerName}
}

// NewLabel returns a label record with the given text.
func NewLabel(text string) Record {
	return Record{Type: TypeLabel, Name: text}
}

// Bool returns a pointer to b, for filling the Enabled field.
func Bool(b bool) *bool { return &b }
