package maintenance

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// DefaultDupeTag marks the notes the duplicate-image scan cleans.
const DefaultDupeTag = "#Temp::Dupe_img"

// DefaultDupeFields are the field names the scan cleans when the caller
// does not narrow them.
var DefaultDupeFields = []string{"Text", "Extra", "Extra2", "Extra3", "Extra4", "Extra5"}

// dupeBackupThreshold is the cleaned-note count above which the scan
// writes a note-ID list, so a large sweep can be audited afterwards.
const dupeBackupThreshold = 45

var imgTagRE = regexp.MustCompile(`(?i)<img [^>]*src="([^"]+)"[^>]*>`)

// StripRepeatedImages removes every <img> tag whose src already appeared
// earlier in html, keeping the first occurrence per src and every
// non-image byte exactly as it was. changed is false when html has no
// repeated src, in which case html is returned unmodified.
func StripRepeatedImages(html string) (out string, changed bool) {
	matches := imgTagRE.FindAllStringSubmatchIndex(html, -1)
	if len(matches) < 2 {
		return html, false
	}

	seen := make(map[string]struct{}, len(matches))
	repeated := false
	for _, m := range matches {
		src := html[m[2]:m[3]]
		if _, ok := seen[src]; ok {
			repeated = true
			break
		}
		seen[src] = struct{}{}
	}
	if !repeated {
		return html, false
	}

	var b []byte
	kept := make(map[string]struct{}, len(matches))
	last := 0
	for _, m := range matches {
		b = append(b, html[last:m[0]]...)
		src := html[m[2]:m[3]]
		if _, ok := kept[src]; !ok {
			b = append(b, html[m[0]:m[1]]...)
			kept[src] = struct{}{}
		}
		last = m[1]
	}
	b = append(b, html[last:]...)
	return string(b), true
}

// DupeImageResult reports one duplicate-image scan.
type DupeImageResult struct {
	// Tag is the tag the scan matched on.
	Tag string

	// NotesMatched is how many notes carried the tag.
	NotesMatched int

	// CleanedNoteIDs lists the notes that were modified, in id order.
	CleanedNoteIDs []int64

	// BackupPath is the note-ID list written when the scan cleaned more
	// than dupeBackupThreshold notes. Empty otherwise.
	BackupPath string
}

// Cleaned returns how many notes were modified.
func (res DupeImageResult) Cleaned() int { return len(res.CleanedNoteIDs) }

// StripDuplicateImages removes repeated inline images from the
// configured fields of every note tagged with the dupe tag. Only fields
// whose resolved name matches the configured list are touched; all other
// bytes of a note survive unchanged. Changed notes are flushed back.
func (r *Runner) StripDuplicateImages(ctx context.Context) (DupeImageResult, error) {
	res := DupeImageResult{Tag: r.dupeTag()}
	err := r.run(ctx, ScanDupeImages, func(ctx context.Context) (map[string]any, error) {
		if err := r.stripDuplicateImages(ctx, &res); err != nil {
			return nil, err
		}
		return map[string]any{
			"tag":     res.Tag,
			"matched": res.NotesMatched,
			"cleaned": res.Cleaned(),
		}, nil
	})
	return res, err
}

func (r *Runner) stripDuplicateImages(ctx context.Context, res *DupeImageResult) error {
	notes, err := r.Col.NotesWithTag(ctx, res.Tag)
	if err != nil {
		return err
	}
	res.NotesMatched = len(notes)

	target := make(map[string]struct{}, len(r.dupeFields()))
	for _, name := range r.dupeFields() {
		target[name] = struct{}{}
	}

	// Field layouts are per note type; resolve each layout once.
	fieldNames := make(map[int64][]string)
	for _, note := range notes {
		names, ok := fieldNames[note.NotetypeID]
		if !ok {
			names, err = r.Col.FieldNames(ctx, note.NotetypeID)
			if err != nil {
				return err
			}
			fieldNames[note.NotetypeID] = names
		}

		changed := false
		for i, name := range names {
			if i >= len(note.Fields) {
				break
			}
			if _, ok := target[name]; !ok {
				continue
			}
			cleaned, stripped := StripRepeatedImages(note.Fields[i])
			if stripped {
				note.Fields[i] = cleaned
				changed = true
				r.logger().Debug("stripped duplicate images",
					"note", note.ID, "field", name)
			}
		}
		if !changed {
			continue
		}
		if err := r.Col.UpdateNoteFields(ctx, note.ID, note.Fields); err != nil {
			return err
		}
		res.CleanedNoteIDs = append(res.CleanedNoteIDs, note.ID)
	}

	if len(res.CleanedNoteIDs) > dupeBackupThreshold {
		lines := make([]string, len(res.CleanedNoteIDs))
		for i, id := range res.CleanedNoteIDs {
			lines[i] = strconv.FormatInt(id, 10)
		}
		path, err := r.Reports.WriteLines("dupe_img_nids", lines)
		if err != nil {
			return fmt.Errorf("back up cleaned note ids: %w", err)
		}
		res.BackupPath = path
	}
	return nil
}

func (r *Runner) dupeTag() string {
	if r.DupeTag != "" {
		return r.DupeTag
	}
	return DefaultDupeTag
}

func (r *Runner) dupeFields() []string {
	if len(r.DupeFields) != 0 {
		return r.DupeFields
	}
	return DefaultDupeFields
}
