package workers

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"meet-registration-portal/recon"
)

// FlushWorker periodically drains every team's pending-write queue and, for
// engines running without a live change feed, refetches the canonical rows.
// This is the safety net that makes queued writes land even when nobody is
// clicking buttons.
type FlushWorker struct {
	registry *recon.Registry
	interval time.Duration
	sched    gocron.Scheduler
}

func NewFlushWorker(registry *recon.Registry, interval time.Duration) *FlushWorker {
	return &FlushWorker{registry: registry, interval: interval}
}

func (w *FlushWorker) Start(ctx context.Context) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("❌ [FLUSH_WORKER] Scheduler init failed: %v", err)
		return
	}
	w.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			w.runOnce(ctx)
		}),
	)
	if err != nil {
		log.Printf("❌ [FLUSH_WORKER] Job registration failed: %v", err)
		return
	}

	sched.Start()
	log.Printf("✅ Flush worker running (every %s)", w.interval)
}

func (w *FlushWorker) runOnce(ctx context.Context) {
	for _, e := range w.registry.Engines() {
		flushed, err := e.FlushPending(ctx)
		if err != nil {
			log.Printf("⚠️ [FLUSH_WORKER] Team %s flush halted: %v", e.TeamID(), err)
		} else if flushed > 0 {
			log.Printf("✅ [FLUSH_WORKER] Team %s: %d queued write(s) landed", e.TeamID(), flushed)
		}

		if e.State() == recon.StateDegraded {
			if err := e.Sync(ctx); err != nil {
				log.Printf("⚠️ [FLUSH_WORKER] Team %s degraded resync failed: %v", e.TeamID(), err)
			}
		}
	}
}

func (w *FlushWorker) Stop() {
	if w.sched != nil {
		_ = w.sched.Shutdown()
	}
}
