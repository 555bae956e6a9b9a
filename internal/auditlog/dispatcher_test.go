package auditlog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/clubsphere/clubsphere/internal/models"
	"github.com/clubsphere/clubsphere/pkg/logger"
)

type blockingRecorder struct {
	release chan struct{}
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *blockingRecorder) Append(ctx context.Context, entry *models.AuditLog) error {
	select {
	case <-r.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return nil
}

func (r *blockingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type failingRecorder struct{}

func (failingRecorder) Append(context.Context, *models.AuditLog) error {
	return errors.New("store offline")
}

type panickingRecorder struct{}

func (panickingRecorder) Append(context.Context, *models.AuditLog) error {
	panic("driver bug")
}

func TestDispatchDoesNotWaitForStore(t *testing.T) {
	recorder := &blockingRecorder{release: make(chan struct{})}
	dispatcher := NewDispatcher(recorder, time.Minute)

	start := time.Now()
	dispatcher.Dispatch(&models.AuditLog{ActorID: "u1"})
	require.Less(t, time.Since(start), 100*time.Millisecond)
	require.Zero(t, recorder.count())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, dispatcher.Drain(ctx), context.DeadlineExceeded)

	close(recorder.release)
	require.NoError(t, dispatcher.Drain(context.Background()))
	require.Equal(t, 1, recorder.count())
}

func TestDispatchLogsFailures(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(nil) })

	dispatcher := NewDispatcher(failingRecorder{}, 0)
	dispatcher.Dispatch(&models.AuditLog{ActorID: "u1", Action: "READ", Module: "members"})
	require.NoError(t, dispatcher.Drain(context.Background()))

	entries := recorded.FilterMessage("failed to write audit entry").All()
	require.Len(t, entries, 1)
	require.Equal(t, "u1", entries[0].ContextMap()["actor_id"])
}

func TestDispatchRecoversFromPanics(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() { logger.Replace(nil) })

	dispatcher := NewDispatcher(panickingRecorder{}, 0)
	dispatcher.Dispatch(&models.AuditLog{ActorID: "u1"})
	require.NoError(t, dispatcher.Drain(context.Background()))
	require.Equal(t, 1, recorded.FilterMessage("audit write panicked").Len())
}

func TestDispatchTimesOutSlowWrites(t *testing.T) {
	recorder := &blockingRecorder{release: make(chan struct{})}
	dispatcher := NewDispatcher(recorder, 10*time.Millisecond)

	dispatcher.Dispatch(&models.AuditLog{ActorID: "u1"})
	require.NoError(t, dispatcher.Drain(context.Background()))
	require.Zero(t, recorder.count())
}

func TestDispatchIgnoresNilInput(t *testing.T) {
	var nilDispatcher *Dispatcher
	nilDispatcher.Dispatch(&models.AuditLog{})
	require.NoError(t, nilDispatcher.Drain(context.Background()))

	dispatcher := NewDispatcher(failingRecorder{}, 0)
	dispatcher.Dispatch(nil)
	require.NoError(t, dispatcher.Drain(context.Background()))
}
