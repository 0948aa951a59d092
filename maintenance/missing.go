package maintenance

import (
	"context"
	"path"
	"regexp"
	"sort"

	"github.com/tackle-labs/tacklebox/collection"
)

// MediaExts are the file extensions the missing-media scan recognizes.
var MediaExts = []string{".png", ".jpg", ".jpeg", ".svg", ".gif", ".mp3", ".mp4"}

var mediaRefREs = compileMediaRefREs()

func compileMediaRefREs() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(MediaExts))
	for _, ext := range MediaExts {
		res[ext] = regexp.MustCompile(`[\w\/\.-]+` + regexp.QuoteMeta(ext))
	}
	return res
}

// MediaRefs extracts the media file names referenced in text: every
// token ending in one of MediaExts, reduced to its base name. Tokens
// may carry path prefixes; only the final path element names a media
// file.
func MediaRefs(text string) []string {
	var refs []string
	for _, ext := range MediaExts {
		for _, tok := range mediaRefREs[ext].FindAllString(text, -1) {
			refs = append(refs, path.Base(tok))
		}
	}
	return refs
}

// MissingMediaResult reports one missing-media scan.
type MissingMediaResult struct {
	// Referenced is how many distinct file names the notes reference.
	Referenced int

	// Missing lists the referenced names absent from the media
	// directory, sorted.
	Missing []string

	// ReportPath is where the list was written.
	ReportPath string
}

// ExportMissingMedia collects every media file name the notes reference,
// subtracts the media directory listing, and writes the remainder to a
// report.
func (r *Runner) ExportMissingMedia(ctx context.Context) (MissingMediaResult, error) {
	var res MissingMediaResult
	err := r.run(ctx, ScanMissingMedia, func(ctx context.Context) (map[string]any, error) {
		if err := r.exportMissingMedia(ctx, &res); err != nil {
			return nil, err
		}
		return map[string]any{
			"referenced": res.Referenced,
			"missing":    len(res.Missing),
			"report":     res.ReportPath,
		}, nil
	})
	return res, err
}

func (r *Runner) exportMissingMedia(ctx context.Context, res *MissingMediaResult) error {
	used := make(map[string]struct{})
	err := r.Col.EachNote(ctx, func(note collection.Note) error {
		for _, field := range note.Fields {
			for _, ref := range MediaRefs(field) {
				used[ref] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	res.Referenced = len(used)

	names, err := collection.ListMediaDir(r.MediaDir)
	if err != nil {
		return err
	}
	existing := make(map[string]struct{}, len(names))
	for _, name := range names {
		existing[name] = struct{}{}
	}

	for name := range used {
		if _, ok := existing[name]; !ok {
			res.Missing = append(res.Missing, name)
		}
	}
	sort.Strings(res.Missing)

	reportPath, err := r.Reports.WriteLines("missing_media", res.Missing)
	if err != nil {
		return err
	}
	res.ReportPath = reportPath
	return nil
}
