package auditlog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clubsphere/clubsphere/internal/models"
	"github.com/clubsphere/clubsphere/pkg/logger"
	"github.com/clubsphere/clubsphere/pkg/metrics"
)

// DefaultWriteTimeout bounds a single detached audit write.
const DefaultWriteTimeout = 5 * time.Second

// Recorder persists audit entries.
type Recorder interface {
	Append(ctx context.Context, entry *models.AuditLog) error
}

// Dispatcher writes entries on detached goroutines so the request path never waits on storage.
// Failures are logged and counted, never retried. In-flight writes are tracked only so shutdown
// can drain them.
type Dispatcher struct {
	recorder Recorder
	timeout  time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
}

// NewDispatcher returns a dispatcher writing to recorder. A non-positive timeout selects
// DefaultWriteTimeout.
func NewDispatcher(recorder Recorder, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &Dispatcher{
		recorder: recorder,
		timeout:  timeout,
		log:      logger.WithModule("audit"),
	}
}

// Dispatch schedules entry for persistence and returns immediately.
func (d *Dispatcher) Dispatch(entry *models.AuditLog) {
	if d == nil || d.recorder == nil || entry == nil {
		return
	}

	d.wg.Add(1)
	metrics.AuditInFlight.Inc()
	go func() {
		defer d.wg.Done()
		defer metrics.AuditInFlight.Dec()
		defer func() {
			if r := recover(); r != nil {
				metrics.AuditWrites.WithLabelValues("failed").Inc()
				d.log.Error("audit write panicked", zap.Any("panic", r), zap.String("module", entry.Module))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.recorder.Append(ctx, entry); err != nil {
			metrics.AuditWrites.WithLabelValues("failed").Inc()
			d.log.Warn("failed to write audit entry",
				zap.Error(err),
				zap.String("actor_id", entry.ActorID),
				zap.String("action", entry.Action),
				zap.String("module", entry.Module),
			)
			return
		}
		metrics.AuditWrites.WithLabelValues("written").Inc()
	}()
}

// Drain blocks until every dispatched write has finished or ctx is done.
func (d *Dispatcher) Drain(ctx context.Context) error {
	if d == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
