package maintenance

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tackle-labs/tacklebox/collection"
)

var soundRefRE = regexp.MustCompile(`\[sound:([^\]]+)\]`)

// usedMediaNames extracts the media file names a note field actually
// uses: [sound:...] references plus the src attribute of every <img>
// tag. Image tags go through an HTML parser rather than a regex because
// user-authored fields carry arbitrarily mangled markup.
func usedMediaNames(field string, into map[string]struct{}) error {
	for _, m := range soundRefRE.FindAllStringSubmatch(field, -1) {
		into[m[1]] = struct{}{}
	}
	if !strings.Contains(strings.ToLower(field), "<img") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(field))
	if err != nil {
		return err
	}
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			into[src] = struct{}{}
		}
	})
	return nil
}

// unusedMediaGroupSize is how many file names share a report line.
const unusedMediaGroupSize = 30

// formatUnusedMedia renders names 30 to a line, comma separated, with
// blank lines between groups so long lists stay scannable.
func formatUnusedMedia(names []string) string {
	var groups []string
	for start := 0; start < len(names); start += unusedMediaGroupSize {
		end := start + unusedMediaGroupSize
		if end > len(names) {
			end = len(names)
		}
		groups = append(groups, strings.Join(names[start:end], ", "))
	}
	return strings.Join(groups, ",\n\n\n")
}

// UnusedMediaResult reports one unused-media scan.
type UnusedMediaResult struct {
	// Existing is how many files the media directory holds.
	Existing int

	// Unused lists the files no note references, sorted.
	Unused []string

	// ReportPath is where the list was written.
	ReportPath string
}

// ExportUnusedMedia lists the media directory, subtracts every file the
// notes reference, and writes the remainder to a timestamped report. The
// scan only reports; deleting is left to the user.
func (r *Runner) ExportUnusedMedia(ctx context.Context) (UnusedMediaResult, error) {
	var res UnusedMediaResult
	err := r.run(ctx, ScanUnusedMedia, func(ctx context.Context) (map[string]any, error) {
		if err := r.exportUnusedMedia(ctx, &res); err != nil {
			return nil, err
		}
		return map[string]any{
			"existing": res.Existing,
			"unused":   len(res.Unused),
			"report":   res.ReportPath,
		}, nil
	})
	return res, err
}

func (r *Runner) exportUnusedMedia(ctx context.Context, res *UnusedMediaResult) error {
	used := make(map[string]struct{})
	err := r.Col.EachNote(ctx, func(note collection.Note) error {
		for _, field := range note.Fields {
			if err := usedMediaNames(field, used); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	names, err := collection.ListMediaDir(r.MediaDir)
	if err != nil {
		return err
	}
	res.Existing = len(names)

	for _, name := range names {
		if _, ok := used[name]; !ok {
			res.Unused = append(res.Unused, name)
		}
	}
	sort.Strings(res.Unused)

	reportPath, err := r.Reports.WriteTimestamped("unused_media", formatUnusedMedia(res.Unused))
	if err != nil {
		return err
	}
	res.ReportPath = reportPath
	return nil
}
