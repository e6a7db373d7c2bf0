package monitor

import (
	"context"
	"net/netip"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"uptime-monitor/internal/models"
)

// cycleWorker runs a cycle at the configured interval and hands the results
// to processCycles. It closes the cycles channel when it exits.
func (m *Monitor) cycleWorker() {
	defer m.wg.Done()
	defer close(m.cycles)

	m.every(m.config.Interval, func() {
		m.enqueue(m.RunCycle(m.ctx))
	})
}

func (m *Monitor) enqueue(cycle Cycle, err error) {
	if err != nil {
		m.logger.Info("discarding interrupted cycle", zap.String("cycle", cycle.ID), zap.Error(err))
		return
	}

	select {
	case m.cycles <- cycle:
	default:
		m.logger.Error("cycle queue full, dropping cycle",
			zap.String("cycle", cycle.ID), zap.Int("checks", len(cycle.Checks)))
	}
}

// RunCycle probes every target with every prober concurrently. All checks of
// the cycle carry the same timestamp. A cycle interrupted by ctx is returned
// with ctx's error, since its checks would report cancellation as failures.
func (m *Monitor) RunCycle(ctx context.Context) (Cycle, error) {
	cycle := Cycle{ID: m.newID(), At: m.now().UTC().Truncate(time.Second)}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, prober := range m.probers {
		for _, target := range m.config.Targets {
			wg.Add(1)
			go func(prober models.Prober, target netip.Addr) {
				defer wg.Done()

				probeCtx, cancel := context.WithTimeout(ctx, m.config.Timeout)
				defer cancel()
				check := prober.Probe(probeCtx, target, cycle.At)

				mu.Lock()
				cycle.Checks = append(cycle.Checks, check)
				mu.Unlock()
			}(prober, target)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return cycle, err
	}

	slices.SortFunc(cycle.Checks, models.Check.Compare)
	m.logCycle(cycle)
	return cycle, nil
}

func (m *Monitor) logCycle(cycle Cycle) {
	failed := 0
	for _, c := range cycle.Checks {
		if !c.IsSuccess() {
			failed++
			m.logger.Debug("check failed",
				zap.String("cycle", cycle.ID),
				zap.Stringer("kind", c.Kind()),
				zap.Stringer("target", c.Target()),
				zap.Stringer("outcome", c.Outcome()))
		}
	}

	level := zap.InfoLevel
	if failed > 0 {
		level = zap.WarnLevel
	}
	if ce := m.logger.Check(level, "cycle complete"); ce != nil {
		ce.Write(
			zap.String("cycle", cycle.ID),
			zap.Time("at", cycle.At),
			zap.Int("checks", len(cycle.Checks)),
			zap.Int("failed", failed))
	}
}

// processCycles persists cycles until the cycle worker closes the channel.
// Queued cycles are still written during shutdown.
func (m *Monitor) processCycles() {
	defer m.wg.Done()

	for cycle := range m.cycles {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(m.ctx), 30*time.Second)
		if err := m.store.SaveCycle(ctx, cycle.ID, cycle.Checks); err != nil {
			m.logger.Error("failed to save cycle", zap.String("cycle", cycle.ID), zap.Error(err))
		}
		cancel()
	}
}
