package host

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GoQueue is a goroutine-backed TaskQueue with an optional concurrency
// limit. Errors reach the per-unit done callback, never the group, so one
// failing tool cannot cancel another.
type GoQueue struct {
	group *errgroup.Group
}

// NewGoQueue creates a queue running at most limit units concurrently.
// limit <= 0 means unlimited.
func NewGoQueue(limit int) *GoQueue {
	group := new(errgroup.Group)
	if limit > 0 {
		group.SetLimit(limit)
	}
	return &GoQueue{group: group}
}

// Submit implements TaskQueue.
func (q *GoQueue) Submit(ctx context.Context, unit func(context.Context) error, done func(error)) {
	q.group.Go(func() error {
		err := unit(ctx)
		if done != nil {
			done(err)
		}
		return nil
	})
}

// Wait blocks until every submitted unit has finished.
func (q *GoQueue) Wait() {
	_ = q.group.Wait()
}

// SyncQueue runs each unit inline on the caller's goroutine. The CLI
// uses it for foreground runs where the caller wants the result before
// returning.
type SyncQueue struct{}

// Submit implements TaskQueue.
func (SyncQueue) Submit(ctx context.Context, unit func(context.Context) error, done func(error)) {
	err := unit(ctx)
	if done != nil {
		done(err)
	}
}

var (
	_ TaskQueue = (*GoQueue)(nil)
	_ TaskQueue = SyncQueue{}
)
