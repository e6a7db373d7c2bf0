package monitor

import (
	"time"

	"go.uber.org/zap"
)

const maintenanceInterval = time.Hour

func (m *Monitor) maintenanceWorker() {
	defer m.wg.Done()
	m.every(maintenanceInterval, m.performMaintenance)
}

// every calls fn immediately and then on each tick until the monitor stops.
func (m *Monitor) every(interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// performMaintenance aggregates hourly stats and prunes checks past the
// retention period
func (m *Monitor) performMaintenance() {
	m.logger.Debug("running maintenance tasks")

	if err := m.store.AggregateHourlyStats(m.ctx); err != nil {
		m.logger.Error("failed to aggregate hourly stats", zap.Error(err))
	}

	if m.config.Retention > 0 {
		cutoff := m.now().Add(-m.config.Retention)
		if _, err := m.store.Prune(m.ctx, cutoff); err != nil {
			m.logger.Error("failed to prune checks", zap.Time("before", cutoff), zap.Error(err))
		}
	}

	m.logger.Debug("maintenance complete")
}
