// Package tacklebox implements a menu-path registry for desktop host
// applications: an explicit mapping from "::"-delimited submenu paths to
// ordered tool entries, with deterministic full rebuilds of the host menu
// tree, declarative manifest loading, and structured run events.
//
// The host's widget toolkit stays behind the MenuHost interface. The
// library owns path walking, node reuse, entry ordering, and icon
// resolution; hosts own widgets, dialogs, and threading.
//
// Subpackages build on this core:
//
//	import "github.com/tackle-labs/tacklebox/action"   // module.function table
//	import "github.com/tackle-labs/tacklebox/manifest" // tool records and file store
//	import "github.com/tackle-labs/tacklebox/loader"   // records -> registrations
package tacklebox
