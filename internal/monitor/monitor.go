package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"uptime-monitor/internal/config"
	"uptime-monitor/internal/logging"
	"uptime-monitor/internal/models"
)

// Cycle is the batch of checks taken at one instant
type Cycle struct {
	ID     string
	At     time.Time
	Checks []models.Check
}

// Monitor runs check cycles and persists them
type Monitor struct {
	config  config.Config
	store   models.Store
	probers []models.Prober
	logger  *zap.Logger
	cycles  chan Cycle
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	now   func() time.Time
	newID func() string
}

// New creates a new Monitor
func New(cfg config.Config, store models.Store, probers []models.Prober, logger *zap.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		config:  cfg,
		store:   store,
		probers: probers,
		logger:  logging.OrNop(logger).Named("monitor"),
		cycles:  make(chan Cycle, 16),
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Start begins the monitoring process. The monitor stops when ctx is
// cancelled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	if len(m.probers) == 0 || len(m.config.Targets) == 0 {
		return fmt.Errorf("nothing to monitor: %d probers, %d targets", len(m.probers), len(m.config.Targets))
	}

	go func() {
		select {
		case <-ctx.Done():
			m.cancel()
		case <-m.ctx.Done():
		}
	}()

	// Start cycle processor
	m.wg.Add(1)
	go m.processCycles()

	m.wg.Add(1)
	go m.cycleWorker()

	// Start maintenance routines
	m.wg.Add(1)
	go m.maintenanceWorker()

	m.logger.Info("monitor started",
		zap.Stringers("targets", m.config.Targets),
		zap.Int("probers", len(m.probers)),
		zap.Duration("interval", m.config.Interval))
	return nil
}

// Stop gracefully stops the monitor
func (m *Monitor) Stop() {
	m.logger.Info("stopping monitor")
	m.cancel()
}

// Wait blocks until all goroutines finish
func (m *Monitor) Wait() {
	m.wg.Wait()
	m.logger.Info("monitor stopped")
}
