package update

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultCollectInterval = time.Minute

var updateStatusMetric = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "scr",
	Subsystem: "monthly_updates",
	Name:      "statuses",
	Help:      "Monthly updates of the current reporting period by status",
}, []string{"status"})

func init() {
	prometheus.MustRegister(updateStatusMetric)
}

// MetricsCollector periodically tallies the current period's updates by
// status.
type MetricsCollector struct {
	Service *Service
	// Interval between tallies. Defaults to one minute.
	Interval time.Duration
}

func (mc *MetricsCollector) Start(ctx context.Context) error {
	interval := mc.Interval
	if interval == 0 {
		interval = defaultCollectInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := mc.collect(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (mc *MetricsCollector) collect(ctx context.Context) error {
	since := mc.Service.calendar.PeriodStart(mc.Service.clock.Now())
	counts, err := mc.Service.db.countUpdatesByStatus(ctx, since)
	if err != nil {
		return err
	}
	for _, status := range []Status{StatusInProgress, StatusSubmitted} {
		updateStatusMetric.WithLabelValues(status.String()).Set(float64(counts[status]))
	}
	mc.Service.V(9).Info("collected update metrics", "since", since, "counts", counts)
	return nil
}
