package manifest

// Positional edits over a record list. Each function returns a new slice
// and leaves its input untouched, so callers can keep the loaded list
// around until a save succeeds.

// Insert returns records with rec inserted at index. Indices outside the
// list clamp to its ends.
func Insert(records []Record, index int, rec Record) []Record {
	if index < 0 {
		index = 0
	}
	if index > len(records) {
		index = len(records)
	}
	out := make([]Record, 0, len(records)+1)
	out = append(out, records[:index]...)
	out = append(out, rec)
	out = append(out, records[index:]...)
	return out
}

// Append returns records with rec appended.
func Append(records []Record, rec Record) []Record {
	return Insert(records, len(records), rec)
}

// Remove returns records without the element at index. An out-of-range
// index returns a copy of the input unchanged.
func Remove(records []Record, index int) []Record {
	if index < 0 || index >= len(records) {
		return clone(records)
	}
	out := make([]Record, 0, len(records)-1)
	out = append(out, records[:index]...)
	out = append(out, records[index+1:]...)
	return out
}

// Move returns records with the element at from relocated to to,
// preserving the relative order of everything else. Out-of-range from
// returns a copy of the input; to clamps.
func Move(records []Record, from, to int) []Record {
	if from < 0 || from >= len(records) {
		return clone(records)
	}
	if to < 0 {
		to = 0
	}
	if to >= len(records) {
		to = len(records) - 1
	}
	out := clone(records)
	rec := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out, Record{})
	copy(out[to+1:], out[to:])
	out[to] = rec
	return out
}

// SetEnabled returns records with the enabled flag at index set. An
// out-of-range index returns a copy of the input unchanged.
func SetEnabled(records []Record, index int, enabled bool) []Record {
	out := clone(records)
	if index < 0 || index >= len(out) {
		return out
	}
	out[index].Enabled = Bool(enabled)
	return out
}

// IndexByName returns the index of the first record whose name matches,
// or -1.
func IndexByName(records []Record, name string) int {
	for i, rec := range records {
		if rec.Name == name {
			return i
		}
	}
	return -1
}

func clone(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
