// Package report logs a periodic traffic summary on a cron schedule.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"

	"tinyhttpd/pkg/state/logger"
)

// Snapshot is a point-in-time view of the server counters.
type Snapshot struct {
	Served  uint64
	Errors  uint64
	Pending int
	Busy    int
}

// Source returns the current counters.
type Source func() Snapshot

type Reporter struct {
	cron   string
	source Source

	mu      sync.Mutex
	last    Snapshot
	lastAt  time.Time
	started time.Time
}

func New(cron string, source Source) (*Reporter, error) {
	if !gronx.New().IsValid(cron) {
		return nil, fmt.Errorf("invalid report cron: %q", cron)
	}
	if source == nil {
		return nil, fmt.Errorf("report source is nil")
	}
	now := time.Now()
	return &Reporter{cron: cron, source: source, lastAt: now, started: now}, nil
}

// Start runs the schedule loop until ctx is cancelled or the returned
// cancel func is called.
func Start(ctx context.Context, cron string, source Source) (context.CancelFunc, error) {
	r, err := New(cron, source)
	if err != nil {
		return func() {}, err
	}
	ctx2, cancel := context.WithCancel(ctx)
	logger.Info("report_enabled", "cron", cron)
	go r.scheduleLoop(ctx2)
	return cancel, nil
}

func (r *Reporter) scheduleLoop(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(r.cron, time.Now(), false)
		if err != nil {
			logger.Error("report_nexttick_failed", "cron", r.cron, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			r.Report(time.Now())
		case <-ctx.Done():
			logger.Info("report_stopped")
			return
		}
	}
}

// Delta is the traffic seen between two reports.
type Delta struct {
	Served   uint64
	Errors   uint64
	Interval time.Duration
}

// Report logs the traffic since the previous report and returns it.
func (r *Reporter) Report(now time.Time) Delta {
	cur := r.source()

	r.mu.Lock()
	d := Delta{
		Served:   sub(cur.Served, r.last.Served),
		Errors:   sub(cur.Errors, r.last.Errors),
		Interval: now.Sub(r.lastAt),
	}
	r.last = cur
	r.lastAt = now
	started := r.started
	r.mu.Unlock()

	logger.Info("traffic_report",
		"served", humanize.Comma(int64(d.Served)),
		"errors", humanize.Comma(int64(d.Errors)),
		"interval", d.Interval.Round(time.Second).String(),
		"total_served", humanize.Comma(int64(cur.Served)),
		"queue_depth", cur.Pending,
		"busy_workers", cur.Busy,
		"up_since", humanize.RelTime(started, now, "ago", "from now"),
	)
	return d
}

// counters are monotonic; guard against a reset source
func sub(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return a - b
}
