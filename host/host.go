// Package host provides built-in implementations of the narrow
// interfaces tacklebox expects its host application to supply: a menu
// surface, user-facing dialogs, a prompt, and a background task queue.
// Desktop hosts replace these with their widget toolkit; the CLI and
// tests run on them directly.
package host

import "context"

// Prompter asks the user a free-text question. ok is false when the user
// cancels.
type Prompter interface {
	Prompt(title, question string) (answer string, ok bool)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(title, question string) (string, bool)

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(title, question string) (string, bool) {
	return f(title, question)
}

// SearchOpener opens the host's card browser preloaded with a search
// query.
type SearchOpener interface {
	OpenSearch(query string) error
}

// SearchOpenerFunc adapts a function to the SearchOpener interface.
type SearchOpenerFunc func(query string) error

// OpenSearch implements SearchOpener.
func (f SearchOpenerFunc) OpenSearch(query string) error { return f(query) }

// AddonConfigOpener opens the host's configuration dialog for another
// add-on, identified the way the host identifies it.
type AddonConfigOpener interface {
	OpenAddonConfig(id string) error
}

// AddonConfigOpenerFunc adapts a function to the AddonConfigOpener
// interface.
type AddonConfigOpenerFunc func(id string) error

// OpenAddonConfig implements AddonConfigOpener.
func (f AddonConfigOpenerFunc) OpenAddonConfig(id string) error { return f(id) }

// TaskQueue runs units of work off the menu activation path. The host's
// own background facility satisfies this; GoQueue and SyncQueue are the
// built-in fallbacks.
type TaskQueue interface {
	// Submit schedules unit and arranges for done to be called with its
	// error. done may run on another goroutine; nil done is allowed.
	Submit(ctx context.Context, unit func(context.Context) error, done func(error))
}
