// Package engine is the orchestration entry point for reminder
// notifications: it owns the cancel-before-rebuild invariant, the
// initialization/permission state machine, and per-reminder serialization.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"remindd/internal/badge"
	"remindd/internal/channel"
	"remindd/internal/channel/intents"
	"remindd/internal/dispatch"
	"remindd/internal/eventbus"
	"remindd/internal/reminder"
	"remindd/internal/schedule"
	"remindd/pkg/logx"
)

var ErrNoSource = errors.New("no reminder source configured")

const (
	stateUninitialized int32 = iota
	stateInitializing
	stateReady
)

type Config struct {
	// InitTimeout bounds the permission/token wait during initialization
	// before degrading to local-only mode.
	InitTimeout time.Duration

	// RefreshAt is a daily "HH:MM" at which recurring reminders are
	// re-scheduled so their bounded occurrence window rolls forward.
	// Empty disables the sweep.
	RefreshAt string

	// IntentRetention is how long cancelled/past cloud intents are kept
	// before the prune job deletes them.
	IntentRetention time.Duration

	Dispatch dispatch.Config
}

func (c *Config) normalize() {
	if c.InitTimeout <= 0 {
		c.InitTimeout = 5 * time.Second
	}
	if c.IntentRetention <= 0 {
		c.IntentRetention = 30 * 24 * time.Hour
	}
}

// Engine implements the public scheduling surface. Construct one instance
// and inject it into callers; it holds all its own state.
type Engine struct {
	log logx.Logger
	bus eventbus.Bus

	local  channel.Local
	cloud  channel.Cloud
	store  intents.Store // optional, for pruning
	source reminder.Source

	router *dispatch.Router
	badge  *badge.Tracker
	locks  *keyedMutex

	cfgMu sync.Mutex
	cfg   Config

	state   atomic.Int32
	granted atomic.Bool

	initMu sync.Mutex
	cron   *cron.Cron
}

type Options struct {
	Local  channel.Local
	Cloud  channel.Cloud
	Store  intents.Store
	Source reminder.Source
	Bus    eventbus.Bus
}

func New(cfg Config, opts Options, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	cfg.normalize()
	e := &Engine{
		log:    log,
		bus:    opts.Bus,
		local:  opts.Local,
		cloud:  opts.Cloud,
		store:  opts.Store,
		source: opts.Source,
		cfg:    cfg,
		locks:  newKeyedMutex(),
	}
	e.router = dispatch.NewRouter(cfg.Dispatch, opts.Local, opts.Cloud, log, opts.Bus)
	e.badge = badge.NewTracker(opts.Local, log)
	return e
}

// Apply updates runtime knobs on config hot reload.
func (e *Engine) Apply(cfg Config) {
	cfg.normalize()
	e.cfgMu.Lock()
	e.cfg = cfg
	e.cfgMu.Unlock()
	e.router.Apply(cfg.Dispatch)
}

func (e *Engine) config() Config {
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	return e.cfg
}

// Initialize acquires notification permissions (bounded wait, degrading to
// local-only on denial) and starts the maintenance jobs. No-op when
// already ready.
func (e *Engine) Initialize(ctx context.Context) error {
	if e.state.Load() == stateReady {
		return nil
	}
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.state.Load() == stateReady {
		return nil
	}
	e.state.Store(stateInitializing)

	cfg := e.config()
	if e.local != nil {
		pctx, cancel := context.WithTimeout(ctx, cfg.InitTimeout)
		granted, err := e.local.RequestPermissions(pctx)
		cancel()
		e.granted.Store(granted && err == nil)
		if err != nil || !granted {
			e.log.Warn("notification permission not granted; continuing best effort", logx.Err(err))
		}
	}

	e.startJobsLocked(cfg)
	e.state.Store(stateReady)
	e.log.Info("engine ready", logx.Bool("permissions", e.granted.Load()))
	return nil
}

func (e *Engine) startJobsLocked(cfg Config) {
	if e.cron != nil {
		return
	}
	c := cron.New()
	added := false

	if e.source != nil && strings.TrimSpace(cfg.RefreshAt) != "" {
		if spec, err := dailySpec(cfg.RefreshAt); err != nil {
			e.log.Warn("invalid refresh time", logx.String("at", cfg.RefreshAt), logx.Err(err))
		} else if _, err := c.AddFunc(spec, e.refreshRecurring); err != nil {
			e.log.Warn("refresh job not registered", logx.Err(err))
		} else {
			added = true
		}
	}
	if e.store != nil {
		if _, err := c.AddFunc("@every 6h", e.pruneIntents); err != nil {
			e.log.Warn("prune job not registered", logx.Err(err))
		} else {
			added = true
		}
	}

	if added {
		c.Start()
		e.cron = c
	}
}

// Cleanup tears the engine down. Idempotent and safe without a prior
// Initialize.
func (e *Engine) Cleanup(ctx context.Context) {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.cron != nil {
		stopCtx := e.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		e.cron = nil
	}
	e.state.Store(stateUninitialized)
	e.granted.Store(false)
}

// ensureReady initializes implicitly when scheduling is invoked before
// Initialize. Fail-open for usability.
func (e *Engine) ensureReady(ctx context.Context) {
	if e.state.Load() != stateReady {
		_ = e.Initialize(ctx)
	}
}

// Schedule cancels any existing schedule for the reminder, rebuilds it and
// dispatches the fresh set. Per-entry failures never abort the batch; the
// new schedule is authoritative going forward.
func (e *Engine) Schedule(ctx context.Context, r *reminder.Reminder) error {
	if r == nil {
		return errors.New("engine: nil reminder")
	}
	e.ensureReady(ctx)
	if err := r.Normalize(); err != nil {
		return err
	}

	unlock := e.locks.lock(r.ID)
	defer unlock()

	e.cancelLocked(ctx, r.ID)

	batch := schedule.Build(time.Now(), r)
	rep := e.router.Dispatch(ctx, batch, e.granted.Load())
	e.updateBadge(ctx)

	e.log.Debug("reminder scheduled",
		logx.String("reminder", r.ID),
		logx.Int("local", rep.LocalSubmitted),
		logx.Int("cloud", rep.CloudSubmitted),
		logx.Int("failed", rep.Failed))
	e.publish(eventbus.TypeScheduled, r.ID)
	return nil
}

// Reschedule is cancel-then-rebuild, never incremental diffing.
func (e *Engine) Reschedule(ctx context.Context, r *reminder.Reminder) error {
	return e.Schedule(ctx, r)
}

// Cancel removes the reminder's local entries and soft-cancels its cloud
// intents. Safe no-op for a reminder with no outstanding schedule.
func (e *Engine) Cancel(ctx context.Context, reminderID string) error {
	reminderID = strings.TrimSpace(reminderID)
	if reminderID == "" {
		return nil
	}
	e.ensureReady(ctx)

	unlock := e.locks.lock(reminderID)
	defer unlock()

	e.cancelLocked(ctx, reminderID)
	e.updateBadge(ctx)
	e.publish(eventbus.TypeCancelled, reminderID)
	return nil
}

// cancelLocked is best-effort on both halves: a failed cancel is logged
// and never blocks the rebuild that follows.
func (e *Engine) cancelLocked(ctx context.Context, reminderID string) {
	if e.local != nil {
		if err := e.local.CancelByReminder(ctx, reminderID); err != nil {
			e.log.Warn("local cancel failed", logx.String("reminder", reminderID), logx.Err(err))
		}
	}
	if e.cloud != nil {
		if _, err := e.cloud.CancelByReminder(ctx, reminderID); err != nil && !errors.Is(err, intents.ErrDisabled) {
			e.log.Warn("cloud cancel failed", logx.String("reminder", reminderID), logx.Err(err))
		}
	}
}

// CancelAll clears every outstanding notification; used on sign-out or
// full app reset.
func (e *Engine) CancelAll(ctx context.Context) error {
	e.ensureReady(ctx)
	if e.local != nil {
		if err := e.local.CancelAll(ctx); err != nil {
			e.log.Warn("local cancel-all failed", logx.Err(err))
		}
	}
	if e.cloud != nil {
		if _, err := e.cloud.CancelAll(ctx); err != nil && !errors.Is(err, intents.ErrDisabled) {
			e.log.Warn("cloud cancel-all failed", logx.Err(err))
		}
	}
	e.badge.Clear(ctx)
	return nil
}

// Snooze rehydrates the reminder, drops its current schedule and submits a
// single local entry at now+delay.
func (e *Engine) Snooze(ctx context.Context, reminderID string, delay time.Duration) error {
	if e.source == nil {
		return ErrNoSource
	}
	if delay <= 0 {
		delay = 5 * time.Minute
	}
	e.ensureReady(ctx)

	r, err := e.source.GetByID(ctx, reminderID)
	if err != nil {
		return fmt.Errorf("engine: snooze %s: %w", reminderID, err)
	}
	if err := r.Normalize(); err != nil {
		return err
	}

	unlock := e.locks.lock(r.ID)
	defer unlock()

	e.cancelLocked(ctx, r.ID)
	if e.local == nil {
		return channel.ErrUnavailable
	}
	n := schedule.BuildSnooze(time.Now(), r, delay)
	if err := e.local.Schedule(ctx, n); err != nil {
		return err
	}
	e.updateBadge(ctx)
	return nil
}

// SendTestNotification submits an immediate local notification. Unlike
// scheduling, failures here surface to the caller: it is an explicit
// user-initiated debug action.
func (e *Engine) SendTestNotification(ctx context.Context) error {
	e.ensureReady(ctx)
	if e.local == nil {
		return channel.ErrUnavailable
	}
	n := schedule.Notification{
		Identifier: "test:" + uuid.NewString(),
		FiresAt:    time.Now().Add(2 * time.Second),
		Title:      "Test notification",
		Body:       "Notifications are working",
		Channel:    schedule.ChannelLocal,
	}
	return e.local.Schedule(ctx, n)
}

func (e *Engine) GetPendingCount(ctx context.Context) int {
	if e.local == nil {
		return 0
	}
	return e.local.PendingCount(ctx)
}

func (e *Engine) SetBadgeCount(ctx context.Context, n int) { e.badge.SetCount(ctx, n) }
func (e *Engine) ClearBadge(ctx context.Context)           { e.badge.Clear(ctx) }

func (e *Engine) updateBadge(ctx context.Context) {
	if e.local == nil {
		return
	}
	e.badge.SetCount(ctx, e.local.PendingCount(ctx))
}

func (e *Engine) publish(typ, reminderID string) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventbus.Event{Type: typ, Data: reminderID})
}

// refreshRecurring re-schedules every active recurring reminder so capped
// occurrence windows keep rolling forward.
func (e *Engine) refreshRecurring() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	list, err := e.source.ListActive(ctx)
	if err != nil {
		e.log.Warn("refresh sweep failed", logx.Err(err))
		return
	}
	n := 0
	for _, r := range list {
		if r == nil || r.Recurrence == nil {
			continue
		}
		if err := e.Schedule(ctx, r); err != nil {
			e.log.Warn("refresh schedule failed", logx.String("reminder", r.ID), logx.Err(err))
			continue
		}
		n++
	}
	e.log.Info("recurring reminders refreshed", logx.Int("count", n))
}

func (e *Engine) pruneIntents() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-e.config().IntentRetention).UnixMilli()
	n, err := e.store.PruneBefore(ctx, cutoff)
	if err != nil {
		e.log.Warn("intent prune failed", logx.Err(err))
		return
	}
	if n > 0 {
		e.log.Info("intents pruned", logx.Int("count", n))
	}
}

func dailySpec(atHHMM string) (string, error) {
	parts := strings.Split(strings.TrimSpace(atHHMM), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", atHHMM)
	}
	var h, m int
	if _, err := fmt.Sscanf(atHHMM, "%d:%d", &h, &m); err != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", atHHMM)
	}
	return fmt.Sprintf("%d %d * * *", m, h), nil
}
