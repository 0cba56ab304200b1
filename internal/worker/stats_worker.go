package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/fleetrent/internal/observability/metrics"
)

// StatsSource reports the current fleet availability counts.
type StatsSource interface {
	FleetStats(ctx context.Context) (available, open int, err error)
}

// StatsWorker periodically refreshes the fleet gauges (available vehicles,
// open rentals) from the store so /metrics reflects reality even across
// restarts and out-of-band database changes.
type StatsWorker struct {
	source   StatsSource
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(source StatsSource, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{source: source, logger: logger, interval: interval}
}

// Start begins the refresh loop; it returns when ctx is canceled.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	available, open, err := w.source.FleetStats(ctx)
	if err != nil {
		w.logger.Error("failed to refresh fleet stats", slog.String("error", err.Error()))
		return
	}
	metrics.SetFleetGauges(available, open)
	w.logger.Debug("fleet stats refreshed",
		slog.Int("available_vehicles", available),
		slog.Int("open_rentals", open),
	)
}
