package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// stubScorer resolves each call only when the test releases it, so
// tests control the order in which in-flight calls complete.
type stubScorer struct {
	mu    sync.Mutex
	calls []*stubCall
}

type stubCall struct {
	req     domain.ScoringRequest
	release chan struct{}
	resp    *domain.ScoringResponse
	err     error
}

func (s *stubScorer) Score(ctx context.Context, req domain.ScoringRequest) (*domain.ScoringResponse, error) {
	c := &stubCall{req: req, release: make(chan struct{})}
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()

	select {
	case <-c.release:
		return c.resp, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// waitForCall blocks until the nth call has started.
func (s *stubScorer) waitForCall(t *testing.T, n int) *stubCall {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		if len(s.calls) >= n {
			c := s.calls[n-1]
			s.mu.Unlock()
			return c
		}
		s.mu.Unlock()
		select {
		case <-deadline:
			t.Fatalf("call %d never started", n)
		case <-time.After(time.Millisecond):
		}
	}
}

func resolved(txID string) *domain.ScoringResponse {
	return &domain.ScoringResponse{
		TransactionID: txID,
		RiskLevel:     "Low",
		Timestamp:     "2026-08-31T10:00:00Z",
	}
}

func TestRegisterStartsIdle(t *testing.T) {
	r := NewRegister(&stubScorer{}, testLogger())

	snap := r.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Result)
	assert.NoError(t, snap.Err)
}

func TestRegisterSuccess(t *testing.T) {
	scorer := &stubScorer{}
	r := NewRegister(scorer, testLogger())

	done := make(chan struct{})
	var resp *domain.ScoringResponse
	var err error
	go func() {
		resp, err = r.Do(context.Background(), domain.ScoringRequest{})
		close(done)
	}()

	call := scorer.waitForCall(t, 1)
	assert.Equal(t, StatePending, r.Snapshot().State)

	call.resp = resolved("TXN-1")
	close(call.release)
	<-done

	require.NoError(t, err)
	assert.Equal(t, "TXN-1", resp.TransactionID)

	snap := r.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "TXN-1", snap.Result.TransactionID)
}

func TestRegisterSupersede(t *testing.T) {
	scorer := &stubScorer{}
	r := NewRegister(scorer, testLogger())

	doneA := make(chan struct{})
	var errA error
	go func() {
		_, errA = r.Do(context.Background(), domain.ScoringRequest{Age: 1})
		close(doneA)
	}()
	callA := scorer.waitForCall(t, 1)

	doneB := make(chan struct{})
	var respB *domain.ScoringResponse
	var errB error
	go func() {
		respB, errB = r.Do(context.Background(), domain.ScoringRequest{Age: 2})
		close(doneB)
	}()
	callB := scorer.waitForCall(t, 2)

	// A is released the moment B replaces it.
	<-doneA
	assert.ErrorIs(t, errA, domain.ErrSuperseded)

	// B resolves first; A's late answer must not overwrite it.
	callB.resp = resolved("TXN-B")
	close(callB.release)
	<-doneB
	require.NoError(t, errB)
	assert.Equal(t, "TXN-B", respB.TransactionID)

	callA.resp = resolved("TXN-A")
	close(callA.release)
	time.Sleep(10 * time.Millisecond)

	snap := r.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "TXN-B", snap.Result.TransactionID)
}

func TestRegisterFailurePreservesPriorResult(t *testing.T) {
	scorer := &stubScorer{}
	r := NewRegister(scorer, testLogger())

	done := make(chan struct{})
	go func() {
		r.Do(context.Background(), domain.ScoringRequest{})
		close(done)
	}()
	call := scorer.waitForCall(t, 1)
	call.resp = resolved("TXN-OK")
	close(call.release)
	<-done

	done = make(chan struct{})
	var err error
	go func() {
		_, err = r.Do(context.Background(), domain.ScoringRequest{})
		close(done)
	}()
	call = scorer.waitForCall(t, 2)
	call.err = &domain.NetworkError{Op: "predict", Timeout: true}
	close(call.release)
	<-done

	require.Error(t, err)

	snap := r.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Error(t, snap.Err)
	require.NotNil(t, snap.Result, "last success must survive a failure")
	assert.Equal(t, "TXN-OK", snap.Result.TransactionID)
}

func TestRegisterCallerContextCancel(t *testing.T) {
	scorer := &stubScorer{}
	r := NewRegister(scorer, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var err error
	go func() {
		_, err = r.Do(ctx, domain.ScoringRequest{})
		close(done)
	}()
	scorer.waitForCall(t, 1)

	cancel()
	<-done
	assert.True(t, errors.Is(err, context.Canceled))
}
