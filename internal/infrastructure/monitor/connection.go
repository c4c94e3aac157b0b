package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/domain"
)

// Probe checks one dependency. A nil error means reachable.
type Probe func(ctx context.Context) error

// Monitor runs one-shot reachability checks of the remote API and local storage.
type Monitor struct {
	api     Probe
	storage Probe
	driver  string
	timeout time.Duration
	logger  *zap.Logger
}

func New(api, storage Probe, driver string, timeout time.Duration, logger *zap.Logger) *Monitor {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		api:     api,
		storage: storage,
		driver:  driver,
		timeout: timeout,
		logger:  logger,
	}
}

// Check probes both dependencies and never fails; problems are reported in Status.
func (m *Monitor) Check(ctx context.Context) Status {
	status := Status{StorageDriver: m.driver}

	started := time.Now()
	if err := m.run(ctx, m.api); err != nil {
		m.logger.Warn("api check failed", zap.Error(err))
		status.APIError = domain.Message(err)
	} else {
		status.API = true
		status.Latency = time.Since(started).Round(time.Millisecond).String()
	}

	if err := m.run(ctx, m.storage); err != nil {
		m.logger.Warn("storage check failed", zap.String("driver", m.driver), zap.Error(err))
		status.StorageError = err.Error()
	} else {
		status.Storage = true
	}

	status.LastCheck = time.Now()
	return status
}

func (m *Monitor) run(ctx context.Context, probe Probe) error {
	if probe == nil {
		return domain.NewError(domain.ErrCodeUnavailable, "not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return probe(ctx)
}
