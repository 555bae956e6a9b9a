package auditlog

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestStateCompletesOnce(t *testing.T) {
	state := NewRequestState("PUT", "/api/members/1?x=1")
	require.Equal(t, "/api/members/1", state.Path)
	require.Equal(t, PhasePending, state.Phase())

	var runs atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state.Complete(func() { runs.Add(1) })
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), runs.Load())
	require.True(t, state.Completed())
	require.Equal(t, PhaseLogged, state.Phase())
	require.False(t, state.Complete(func() { runs.Add(1) }))
}

func TestRequestStateAdvanceIsMonotonic(t *testing.T) {
	state := NewRequestState("PATCH", "/api/members/1")

	state.Advance(PhaseAwaitingResponse)
	state.Advance(PhaseCapturingPrior)
	require.Equal(t, PhaseAwaitingResponse, state.Phase())

	state.Complete(nil)
	state.Advance(PhaseCapturingPrior)
	require.Equal(t, PhaseLogged, state.Phase())
	require.Equal(t, "logged", state.Phase().String())
}
