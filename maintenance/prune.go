package maintenance

import "context"

// PruneResult reports one note-type prune.
type PruneResult struct {
	// Examined is how many note types the collection held.
	Examined int

	// Pruned names the removed note types, in removal order.
	Pruned []string
}

// PruneEmptyNotetypes removes every note type whose notes generate zero
// cards. Such types are leftovers from imports and template experiments;
// they clutter pickers without being able to show up in study.
func (r *Runner) PruneEmptyNotetypes(ctx context.Context) (PruneResult, error) {
	var res PruneResult
	err := r.run(ctx, ScanPruneNotetypes, func(ctx context.Context) (map[string]any, error) {
		if err := r.pruneEmptyNotetypes(ctx, &res); err != nil {
			return nil, err
		}
		return map[string]any{
			"examined": res.Examined,
			"pruned":   len(res.Pruned),
		}, nil
	})
	return res, err
}

func (r *Runner) pruneEmptyNotetypes(ctx context.Context, res *PruneResult) error {
	types, err := r.Col.Notetypes(ctx)
	if err != nil {
		return err
	}
	res.Examined = len(types)

	for _, nt := range types {
		count, err := r.Col.CardCount(ctx, nt.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := r.Col.DeleteNotetype(ctx, nt.ID); err != nil {
			return err
		}
		res.Pruned = append(res.Pruned, nt.Name)
		r.logger().Info("pruned empty notetype", "notetype", nt.Name, "id", nt.ID)
	}
	return nil
}
