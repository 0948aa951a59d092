package tacklebox

// Reporter surfaces user-facing notices the way desktop hosts surface
// modal dialogs. Loading and persistence report through it and keep
// going instead of failing: an unresolvable manifest record or a save
// error reaches the user here, never as a panic or a lost menu.
type Reporter interface {
	// Info shows a non-error notice.
	Info(title, message string)

	// Error shows an error notice. detail carries supporting material
	// such as a wrapped error chain, a file path, or a record dump, and
	// may be empty.
	Error(title, message, detail string)
}

// NopReporter discards every notice.
type NopReporter struct{}

// Info implements Reporter.
func (NopReporter) Info(title, message string) {}

// Error implements Reporter.
func (NopReporter) Error(title, message, detail string) {}

var _ Reporter = NopReporter{}
