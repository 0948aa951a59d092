// Package loader turns declarative manifest records into toolbar
// registrations. Every record produces an explicit per-record result;
// nothing in a manifest can abort loading, and nothing is swallowed
// silently except records too malformed to name.
package loader

// ResultKind classifies what the loader did with one manifest record.
type ResultKind string

const (
	// ResultLoaded is a well-formed action record, resolved and
	// registered.
	ResultLoaded ResultKind = "loaded"

	// ResultSeparator and ResultLabel are render-only records registered
	// as their widget kinds.
	ResultSeparator ResultKind = "separator"
	ResultLabel     ResultKind = "label"

	// ResultSkippedMalformed is a record missing required fields. It is
	// skipped without user-facing noise; the record never names anything
	// worth a dialog.
	ResultSkippedMalformed ResultKind = "skipped_malformed"

	// ResultSkippedUnresolved is a well-formed record whose
	// module.function is not in the action table. It is reported through
	// the Reporter and loading continues.
	ResultSkippedUnresolved ResultKind = "skipped_unresolved"
)

// String returns the string representation of the ResultKind.
func (k ResultKind) String() string { return string(k) }

// RecordResult is the outcome for a single record, in file order.
type RecordResult struct {
	// Index is the record's position in the manifest array.
	Index int `json:"index"`

	// Name is the record's display name, possibly empty for malformed
	// records.
	Name string `json:"name,omitempty"`

	// Ref is the action reference for action records.
	Ref string `json:"ref,omitempty"`

	// Kind classifies the outcome.
	Kind ResultKind `json:"kind"`

	// Detail explains skips in human-readable form.
	Detail string `json:"detail,omitempty"`
}

// Report summarizes one load pass.
type Report struct {
	Results []RecordResult `json:"results"`
}

// Count returns how many records landed in the given result kind.
func (r Report) Count(kind ResultKind) int {
	n := 0
	for _, res := range r.Results {
		if res.Kind == kind {
			n++
		}
	}
	return n
}

// Loaded returns how many records registered as entries of any kind.
func (r Report) Loaded() int {
	return r.Count(ResultLoaded) + r.Count(ResultSeparator) + r.Count(ResultLabel)
}

// Skipped returns how many records were dropped.
func (r Report) Skipped() int {
	return r.Count(ResultSkippedMalformed) + r.Count(ResultSkippedUnresolved)
}

func (r *Report) add(res RecordResult) {
	r.Results = append(r.Results, res)
}
