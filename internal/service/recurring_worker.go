package service

import (
	"context"
	"sync"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/websocket"
	"github.com/rs/zerolog"
)

// RecurringWorker is a background worker that periodically materializes due
// occurrences of recurring planned payments.
type RecurringWorker struct {
	recurringService *RecurringService
	publisher        websocket.EventPublisher
	logger           zerolog.Logger
	interval         time.Duration
	stopCh           chan struct{}
	doneCh           chan struct{}
	mu               sync.Mutex
	running          bool
}

// RecurringWorkerConfig holds configuration for the recurring worker
type RecurringWorkerConfig struct {
	Interval time.Duration // How often to run the materialization sweep
}

// DefaultRecurringWorkerConfig returns sensible defaults
func DefaultRecurringWorkerConfig() RecurringWorkerConfig {
	return RecurringWorkerConfig{
		Interval: 6 * time.Hour,
	}
}

// NewRecurringWorker creates a new recurring worker
func NewRecurringWorker(
	recurringService *RecurringService,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config RecurringWorkerConfig,
) *RecurringWorker {
	if config.Interval <= 0 {
		config.Interval = 6 * time.Hour
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	return &RecurringWorker{
		recurringService: recurringService,
		publisher:        publisher,
		logger:           logger.With().Str("component", "recurring_worker").Logger(),
		interval:         config.Interval,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start begins the background materialization sweep
func (w *RecurringWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Msg("Starting recurring worker")

	go w.run(ctx)
}

// Stop gracefully stops the recurring worker
func (w *RecurringWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping recurring worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Recurring worker stopped")
}

// run is the main loop for the recurring worker
func (w *RecurringWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

// sweep materializes every due occurrence and pushes one event per created
// transaction so connected clients refresh without polling.
func (w *RecurringWorker) sweep() {
	startTime := time.Now()
	created := w.recurringService.ProcessRecurring(time.Now())

	for _, occ := range created {
		w.publisher.Publish(websocket.RecurringMaterialized(occ))
	}

	if len(created) > 0 {
		w.logger.Info().
			Int("created", len(created)).
			Dur("elapsed", time.Since(startTime)).
			Msg("Completed recurring sweep")
	} else {
		w.logger.Debug().
			Dur("elapsed", time.Since(startTime)).
			Msg("Completed recurring sweep, nothing due")
	}
}

// RunNow manually triggers a materialization sweep. This backs the manual
// process endpoint so clients can force a run without waiting for the ticker.
func (w *RecurringWorker) RunNow() []CreatedOccurrence {
	w.logger.Debug().Msg("Manual recurring sweep triggered")
	created := w.recurringService.ProcessRecurring(time.Now())
	for _, occ := range created {
		w.publisher.Publish(websocket.RecurringMaterialized(occ))
	}
	return created
}

// IsRunning returns whether the worker is currently running
func (w *RecurringWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
