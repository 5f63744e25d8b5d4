package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/service"
)

// Sweeper runs one reminder pass.
type Sweeper interface {
	Sweep(ctx context.Context, dryRun bool) (*service.SweepReport, error)
}

// ReminderWorker runs the reminder sweep on a fixed interval until stopped.
type ReminderWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger

	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// NewReminderWorker builds a worker. interval must be positive.
func NewReminderWorker(sweeper Sweeper, interval time.Duration, logger *zap.Logger) *ReminderWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs an immediate sweep and then one per interval in a goroutine.
func (w *ReminderWorker) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()
	if _, err := w.sweeper.Sweep(sweepCtx, false); err != nil {
		w.logger.Error("reminder sweep failed", zap.Error(err))
	}
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (w *ReminderWorker) Stop() {
	w.once.Do(func() { close(w.stop) })
	if w.started.Load() {
		<-w.done
	}
}
