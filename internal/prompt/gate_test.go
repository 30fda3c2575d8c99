package prompt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsConfirmation(t *testing.T) {
	assert.False(t, NeedsConfirmation(0))
	assert.False(t, NeedsConfirmation(LargeFileThreshold))
	assert.True(t, NeedsConfirmation(LargeFileThreshold+1))
	assert.EqualValues(t, 10*1024*1024, LargeFileThreshold)
}

func TestStaticGates(t *testing.T) {
	ctx := context.Background()
	ok, err := AcceptLarge.ConfirmLarge(ctx, Candidate{Name: "x"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = RejectLarge.ConfirmLarge(ctx, Candidate{Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueGateRequestResponse(t *testing.T) {
	gate := NewQueueGate()

	var (
		wg      sync.WaitGroup
		answer  bool
		callErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		answer, callErr = gate.ConfirmLarge(context.Background(), Candidate{Name: "big.bin", Size: 42})
	}()

	req := <-gate.Requests()
	assert.Equal(t, Candidate{Name: "big.bin", Size: 42}, req.Candidate)
	req.Resolve(true)
	req.Resolve(false) // ignored

	wg.Wait()
	require.NoError(t, callErr)
	assert.True(t, answer)
}

func TestQueueGateOnePendingAtATime(t *testing.T) {
	gate := NewQueueGate()
	results := make(chan string, 2)

	for _, name := range []string{"one", "two"} {
		name := name
		go func() {
			ok, _ := gate.ConfirmLarge(context.Background(), Candidate{Name: name})
			if ok {
				results <- name
			} else {
				results <- "rejected " + name
			}
		}()
	}

	first := <-gate.Requests()
	select {
	case <-gate.Requests():
		t.Fatal("second request delivered before the first was resolved")
	case <-time.After(50 * time.Millisecond):
	}
	first.Resolve(true)
	assert.Equal(t, first.Candidate.Name, <-results)

	second := <-gate.Requests()
	assert.NotEqual(t, first.Candidate.Name, second.Candidate.Name)
	second.Resolve(false)
	assert.Equal(t, "rejected "+second.Candidate.Name, <-results)
}

func TestQueueGateCancelled(t *testing.T) {
	gate := NewQueueGate()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := gate.ConfirmLarge(ctx, Candidate{Name: "x"})
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
