package clients

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBreaker returns a breaker driven by a fake clock the caller can advance.
func newTestBreaker(maxFailures, halfOpenLimit int) (*CircuitBreaker, func(time.Duration)) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       100 * time.Millisecond,
		HalfOpenLimit: halfOpenLimit,
	})
	cb.now = func() time.Time { return now }

	return cb, func(d time.Duration) { now = now.Add(d) }
}

func TestCircuitBreaker_InitialState(t *testing.T) {
	cb, _ := newTestBreaker(5, 3)

	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, 2)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "success resets the failure count")

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenTrial(t *testing.T) {
	t.Run("closes after enough successes", func(t *testing.T) {
		cb, advance := newTestBreaker(1, 2)
		cb.RecordFailure()

		advance(50 * time.Millisecond)
		assert.False(t, cb.Allow(), "still cooling down")

		advance(100 * time.Millisecond)
		require.True(t, cb.Allow())
		assert.Equal(t, StateHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.Equal(t, StateHalfOpen, cb.State())
		cb.RecordSuccess()
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("reopens on failure", func(t *testing.T) {
		cb, advance := newTestBreaker(1, 2)
		cb.RecordFailure()
		advance(150 * time.Millisecond)
		require.True(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, StateOpen, cb.State())
		assert.False(t, cb.Allow())
	})

	t.Run("limits concurrent trials", func(t *testing.T) {
		cb, advance := newTestBreaker(1, 2)
		cb.RecordFailure()
		advance(150 * time.Millisecond)

		assert.True(t, cb.Allow())
		assert.True(t, cb.Allow())
		assert.False(t, cb.Allow())
	})
}

func TestCircuitBreaker_ReleaseFreesTrialSlot(t *testing.T) {
	cb, advance := newTestBreaker(1, 1)
	cb.RecordFailure()
	advance(150 * time.Millisecond)

	require.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "single trial in flight")

	cb.Release()
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.True(t, cb.Allow(), "abandoned trial frees its slot")
}

func TestCircuitBreaker_RetryIn(t *testing.T) {
	cb, advance := newTestBreaker(1, 1)
	assert.Zero(t, cb.RetryIn())

	cb.RecordFailure()
	assert.Equal(t, 100*time.Millisecond, cb.RetryIn())

	advance(60 * time.Millisecond)
	assert.Equal(t, 40*time.Millisecond, cb.RetryIn())

	advance(time.Second)
	assert.Zero(t, cb.RetryIn(), "cool-down elapsed")
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb, _ := newTestBreaker(1, 1)

	changes := make(chan [2]State, 1)
	cb.OnStateChange(func(from, to State) { changes <- [2]State{from, to} })

	cb.RecordFailure()

	select {
	case change := <-changes:
		assert.Equal(t, [2]State{StateClosed, StateOpen}, change)
	case <-time.After(time.Second):
		t.Fatal("state change callback not invoked")
	}
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   100,
		Timeout:       time.Second,
		HalfOpenLimit: 10,
	})

	var wg sync.WaitGroup
	for i := range 1000 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !cb.Allow() {
				return
			}
			if i%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		}()
	}
	wg.Wait()

	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
		{State(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
