package maintenance

import (
	"context"
	"fmt"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/action"
	"github.com/tackle-labs/tacklebox/host"
)

// Action references registered by RegisterActions.
const (
	RefStripDuplicateImages = "images.strip_duplicates"
	RefExportMissingMedia   = "media.export_missing"
	RefExportUnusedMedia    = "media.export_unused"
	RefPruneEmptyNotetypes  = "notetypes.prune_empty"
	RefSearchQIDs           = "browser.search_qids"
)

// ActionDeps are the host facilities the registered actions talk to.
// Reporter shows the completion notices; Prompter and Search serve the
// QID search. Nil fields degrade: notices are dropped, the QID search
// becomes a no-op.
type ActionDeps struct {
	Reporter tacklebox.Reporter
	Prompter host.Prompter
	Search   host.SearchOpener
}

func (d ActionDeps) reporter() tacklebox.Reporter {
	if d.Reporter != nil {
		return d.Reporter
	}
	return tacklebox.NopReporter{}
}

// RegisterActions binds the maintenance scans and the QID search into
// the table under their canonical references, so manifest records can
// name them.
func RegisterActions(table *action.Table, r *Runner, deps ActionDeps) error {
	register := func(ref string, fn action.Func) error {
		module, function, ok := action.SplitRef(ref)
		if !ok {
			return fmt.Errorf("maintenance: bad action reference %q", ref)
		}
		return table.Register(module, function, fn)
	}

	actions := map[string]action.Func{
		RefStripDuplicateImages: func(ctx context.Context) error {
			res, err := r.StripDuplicateImages(ctx)
			if err != nil {
				return err
			}
			deps.reporter().Info("Duplicate images",
				fmt.Sprintf("Cleaned %d of %d notes tagged %s.",
					res.Cleaned(), res.NotesMatched, res.Tag))
			return nil
		},
		RefExportMissingMedia: func(ctx context.Context) error {
			res, err := r.ExportMissingMedia(ctx)
			if err != nil {
				return err
			}
			deps.reporter().Info("Missing media",
				fmt.Sprintf("%d of %d referenced files are missing. List written to %s.",
					len(res.Missing), res.Referenced, res.ReportPath))
			return nil
		},
		RefExportUnusedMedia: func(ctx context.Context) error {
			res, err := r.ExportUnusedMedia(ctx)
			if err != nil {
				return err
			}
			deps.reporter().Info("Unused media",
				fmt.Sprintf("%d of %d media files are unused. List written to %s.",
					len(res.Unused), res.Existing, res.ReportPath))
			return nil
		},
		RefPruneEmptyNotetypes: func(ctx context.Context) error {
			res, err := r.PruneEmptyNotetypes(ctx)
			if err != nil {
				return err
			}
			deps.reporter().Info("Prune note types",
				fmt.Sprintf("Removed %d of %d note types.",
					len(res.Pruned), res.Examined))
			return nil
		},
		RefSearchQIDs: func(ctx context.Context) error {
			return searchQIDs(deps)
		},
	}

	for ref, fn := range actions {
		if err := register(ref, fn); err != nil {
			return err
		}
	}
	return nil
}

// searchQIDs prompts for free text, builds the qid: query, and opens the
// host browser on it. A canceled prompt is not an error, and neither is
// text without question IDs; the user just gets told.
func searchQIDs(deps ActionDeps) error {
	if deps.Prompter == nil || deps.Search == nil {
		return fmt.Errorf("maintenance: qid search needs a prompter and a search opener")
	}
	text, ok := deps.Prompter.Prompt("Search QIDs", "Paste text containing question IDs:")
	if !ok {
		return nil
	}
	query := BuildQIDQuery(text)
	if query == "" {
		deps.reporter().Info("Search QIDs", "No question IDs found in the input.")
		return nil
	}
	return deps.Search.OpenSearch(query)
}
