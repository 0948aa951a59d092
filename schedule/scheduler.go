// Package schedule runs manifest actions on cron expressions. It is a
// poll-loop scheduler: entries are declared up front in the session
// config, cron expressions are parsed at construction so a typo fails
// the whole startup instead of one silent fire, and action references
// resolve through the table at fire time so late registrations still
// count.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/action"
	"github.com/tackle-labs/tacklebox/host"
)

const defaultPollInterval = 30 * time.Second

// Entry declares one scheduled action.
type Entry struct {
	// Name identifies the schedule in logs and overlap tracking. Names
	// must be unique.
	Name string

	// Action is the table reference to invoke, e.g. "media.export_missing".
	Action string

	// Cron is a five-field cron expression, evaluated in UTC.
	Cron string
}

// Config configures a Scheduler.
type Config struct {
	// Entries are the schedules to run. Required to be non-empty.
	Entries []Entry

	// Table resolves action references at fire time. Required.
	Table *action.Table

	// Queue runs fired actions. Nil runs them inline on the polling
	// goroutine.
	Queue host.TaskQueue

	// PollInterval is how often due entries are checked. Zero or
	// negative uses the default.
	PollInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time

	// Logger receives schedule lifecycle lines. Nil uses the default.
	Logger *slog.Logger

	// Events receives tool.* events for fired runs. Nil drops them.
	Events tacklebox.EventHandler
}

type entryState struct {
	name     string
	action   string
	cron     string
	schedule cron.Schedule
	next     time.Time
}

// Scheduler fires configured actions when their cron expressions come
// due.
type Scheduler struct {
	entries      []*entryState
	table        *action.Table
	queue        host.TaskQueue
	pollInterval time.Duration
	now          func() time.Time
	logger       *slog.Logger
	events       tacklebox.EventHandler

	mu     sync.Mutex
	active map[string]struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New validates the configuration, parses every cron expression, and
// primes each entry's next fire time.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Table == nil {
		return nil, errors.New("schedule: action table is required")
	}
	if len(cfg.Entries) == 0 {
		return nil, errors.New("schedule: no entries configured")
	}
	if cfg.Queue == nil {
		cfg.Queue = host.SyncQueue{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	now := cfg.Now().UTC()
	seen := make(map[string]struct{}, len(cfg.Entries))
	entries := make([]*entryState, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		if e.Name == "" {
			return nil, errors.New("schedule: entry without a name")
		}
		if _, ok := seen[e.Name]; ok {
			return nil, fmt.Errorf("schedule: duplicate entry name %q", e.Name)
		}
		seen[e.Name] = struct{}{}
		if e.Action == "" {
			return nil, fmt.Errorf("schedule: entry %q has no action reference", e.Name)
		}
		parsed, err := ParseCron(e.Cron)
		if err != nil {
			return nil, fmt.Errorf("schedule: entry %q: %w", e.Name, err)
		}
		entries = append(entries, &entryState{
			name:     e.Name,
			action:   e.Action,
			cron:     e.Cron,
			schedule: parsed,
			next:     parsed.Next(now),
		})
	}

	return &Scheduler{
		entries:      entries,
		table:        cfg.Table,
		queue:        cfg.Queue,
		pollInterval: cfg.PollInterval,
		now:          cfg.Now,
		logger:       cfg.Logger,
		events:       cfg.Events,
		active:       map[string]struct{}{},
	}, nil
}

// EntryInfo is a snapshot of one schedule for listings.
type EntryInfo struct {
	Name   string
	Action string
	Cron   string
	Next   time.Time
}

// Entries returns a snapshot of every schedule with its next fire time.
func (s *Scheduler) Entries() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]EntryInfo, 0, len(s.entries))
	for _, e := range s.entries {
		infos = append(infos, EntryInfo{
			Name:   e.name,
			Action: e.action,
			Cron:   e.cron,
			Next:   e.next,
		})
	}
	return infos
}

// Start begins background polling. Starting a running scheduler is a
// no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	s.logger.Info("scheduler started",
		"entries", len(s.entries), "poll_interval", s.pollInterval)

	go func() {
		defer close(done)
		_ = s.RunOnce(loopCtx)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				_ = s.RunOnce(loopCtx)
			}
		}
	}()
	return nil
}

// Stop halts polling and waits for the loop to exit or ctx to expire.
// Fired actions already on the queue keep running; their context is
// canceled along with the loop.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce executes a single polling pass, firing every due entry.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now().UTC()
	for _, e := range s.entries {
		s.mu.Lock()
		due := !e.next.After(now)
		if due {
			e.next = e.schedule.Next(now)
		}
		s.mu.Unlock()

		if due {
			s.fire(ctx, e)
		}
	}
	return nil
}

// FireAll fires every entry immediately, regardless of its schedule. The
// overlap guard still applies. Manual foreground runs use it.
func (s *Scheduler) FireAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, e := range s.entries {
		s.fire(ctx, e)
	}
	return nil
}

func (s *Scheduler) fire(ctx context.Context, e *entryState) {
	fn, ok := s.table.Resolve(e.action)
	if !ok {
		s.logger.Error("scheduled action not registered",
			"schedule", e.name, "action", e.action)
		return
	}

	if !s.markActive(e.name) {
		s.logger.Warn("skipping schedule, previous run still active",
			"schedule", e.name, "action", e.action)
		return
	}

	runID := uuid.NewString()
	start := time.Now()
	s.emit(tacklebox.NewEvent(tacklebox.EventToolStarted, runID).WithRef(e.action))
	s.logger.Info("schedule fired",
		"schedule", e.name, "action", e.action, "run_id", runID)

	s.queue.Submit(ctx, fn, func(err error) {
		defer s.unmarkActive(e.name)

		elapsed := time.Since(start)
		if err != nil {
			s.emit(tacklebox.NewEvent(tacklebox.EventToolFailed, runID).
				WithRef(e.action).
				WithElapsed(elapsed).
				WithPayload("error", err.Error()))
			s.logger.Error("scheduled run failed",
				"schedule", e.name, "action", e.action, "run_id", runID, "error", err)
			return
		}
		s.emit(tacklebox.NewEvent(tacklebox.EventToolFinished, runID).
			WithRef(e.action).
			WithElapsed(elapsed))
		s.logger.Info("scheduled run finished",
			"schedule", e.name, "action", e.action, "run_id", runID, "elapsed", elapsed)
	})
}

func (s *Scheduler) emit(e tacklebox.Event) {
	if s.events != nil {
		s.events(e)
	}
}

// markActive reports whether the entry transitioned from idle to
// running; false means a prior run is still active.
func (s *Scheduler) markActive(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[name]; ok {
		return false
	}
	s.active[name] = struct{}{}
	return true
}

func (s *Scheduler) unmarkActive(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, name)
}
