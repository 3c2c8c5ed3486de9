// Package dispatch fans a built schedule out to the delivery channels.
//
// Routing is a data-driven decision table over (entry channel, channel
// availability, permission state) rather than nested fallback handlers, so
// the policy is testable without I/O.
package dispatch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"remindd/internal/channel"
	"remindd/internal/eventbus"
	"remindd/internal/schedule"
	"remindd/pkg/logx"
)

type Config struct {
	// CloudRatePerSec throttles intent writes; 0 disables throttling.
	CloudRatePerSec int
	// EntryTimeout bounds each external-channel call.
	EntryTimeout time.Duration
}

// Report summarizes one dispatch batch. Individual failures are isolated:
// they are counted here, logged, and never abort the batch.
type Report struct {
	LocalSubmitted int
	CloudSubmitted int
	Skipped        int
	Failed         int
}

type Router struct {
	log   logx.Logger
	bus   eventbus.Bus
	local channel.Local
	cloud channel.Cloud

	// mu guards the hot-reloadable knobs below; Apply can run from the
	// config watcher while a dispatch batch is in flight.
	mu           sync.Mutex
	limiter      *rate.Limiter
	entryTimeout time.Duration
}

func NewRouter(cfg Config, local channel.Local, cloud channel.Cloud, log logx.Logger, bus eventbus.Bus) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Router{log: log, bus: bus, local: local, cloud: cloud}
	r.Apply(cfg)
	return r
}

// Apply updates throttling knobs at runtime (config hot reload).
func (r *Router) Apply(cfg Config) {
	if cfg.EntryTimeout <= 0 {
		cfg.EntryTimeout = 10 * time.Second
	}
	var lim *rate.Limiter
	if cfg.CloudRatePerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.CloudRatePerSec), cfg.CloudRatePerSec)
	}
	r.mu.Lock()
	r.entryTimeout = cfg.EntryTimeout
	r.limiter = lim
	r.mu.Unlock()
}

// snapshot reads the knobs once per submission so a concurrent Apply never
// races an in-flight entry.
func (r *Router) snapshot() (*rate.Limiter, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limiter, r.entryTimeout
}

// Dispatch submits every entry best-effort. It assumes the caller already
// cancelled the reminder's prior schedule; no deduplication happens here.
//
// permissionGranted=false degrades local delivery to best effort (entries
// are still submitted; the OS decides). A nil cloud channel skips cloud
// entries entirely.
func (r *Router) Dispatch(ctx context.Context, batch []schedule.Notification, permissionGranted bool) Report {
	var rep Report
	for _, n := range batch {
		switch n.Channel {
		case schedule.ChannelCloud:
			if r.cloud == nil {
				rep.Skipped++
				continue
			}
			if err := r.submitCloud(ctx, n); err != nil {
				rep.Failed++
				r.log.Warn("cloud intent write failed",
					logx.String("id", n.Identifier),
					logx.String("target", n.TargetUserID),
					logx.Err(err))
				r.publish(eventbus.TypeDispatchFailed, n, err)
				continue
			}
			rep.CloudSubmitted++
			r.publish(eventbus.TypeDispatchSent, n, nil)

		default: // local
			if r.local == nil {
				rep.Skipped++
				continue
			}
			if !permissionGranted {
				// Best effort: the scheduler may still accept silently.
				r.log.Debug("submitting without permission grant", logx.String("id", n.Identifier))
			}
			if err := r.submitLocal(ctx, n); err != nil {
				rep.Failed++
				r.log.Warn("local submission failed",
					logx.String("id", n.Identifier),
					logx.Err(err))
				r.publish(eventbus.TypeDispatchFailed, n, err)
				continue
			}
			rep.LocalSubmitted++
			r.publish(eventbus.TypeDispatchSent, n, nil)
		}
	}
	return rep
}

func (r *Router) submitLocal(ctx context.Context, n schedule.Notification) error {
	_, timeout := r.snapshot()
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.local.Schedule(cctx, n)
}

func (r *Router) submitCloud(ctx context.Context, n schedule.Notification) error {
	limiter, timeout := r.snapshot()
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if limiter != nil {
		if err := limiter.Wait(cctx); err != nil {
			return err
		}
	}
	return r.cloud.Enqueue(cctx, n)
}

type Outcome struct {
	Identifier string
	Channel    schedule.Channel
	Target     string
	Error      string
}

func (r *Router) publish(typ string, n schedule.Notification, err error) {
	if r.bus == nil {
		return
	}
	o := Outcome{Identifier: n.Identifier, Channel: n.Channel, Target: n.TargetUserID}
	if err != nil {
		o.Error = err.Error()
	}
	r.bus.Publish(eventbus.Event{Type: typ, Data: o})
}
