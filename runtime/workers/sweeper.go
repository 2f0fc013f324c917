package workers

import (
	"chat-room/contract"
	"chat-room/services"
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// SweepWorker evicts idle participants at a fixed interval.
// The first sweep happens one interval after Run starts.
type SweepWorker struct {
	log      *slog.Logger
	presence services.IPresenceService
	observer contract.SweepObserver
	clock    clockwork.Clock
	interval time.Duration
}

func NewSweepWorker(
	log *slog.Logger,
	presence services.IPresenceService,
	observer contract.SweepObserver,
	clock clockwork.Clock,
	interval time.Duration,
) *SweepWorker {
	return &SweepWorker{
		log:      log,
		presence: presence,
		observer: observer,
		clock:    clock,
		interval: interval,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info("Starting sweep worker", "interval", w.interval)
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping sweeps")
			return nil
		case <-ticker.Chan():
			w.sweep(ctx)
		}
	}
}

// A failed sweep is reported and the next tick tries again.
func (w *SweepWorker) sweep(ctx context.Context) {
	report, err := w.presence.Sweep(ctx)
	if err != nil {
		w.log.Error("Sweep failed", "err", err)
	} else if len(report.Evicted) > 0 || len(report.Failed) > 0 {
		w.log.Info("Sweep done", "evicted", len(report.Evicted), "failed", len(report.Failed))
	}
	if w.observer != nil {
		w.observer.ObserveSweep(report, err)
	}
}
