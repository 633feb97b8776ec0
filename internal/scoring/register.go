package scoring

import (
	"context"
	"log/slog"
	"sync"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// State is the register's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is a point-in-time view of the register.
type Snapshot struct {
	State State

	// Result is the last successful response. It survives later
	// failures so the desk never loses a verdict to a flaky network.
	Result *domain.ScoringResponse

	// Err is set only in StateFailed.
	Err error
}

// call is one in-flight submission. Its done channel closes exactly
// once, either when its scoring call resolves or when a newer
// submission replaces it.
type call struct {
	done   chan struct{}
	cancel context.CancelFunc
	resp   *domain.ScoringResponse
	err    error
}

// Register serializes scoring submissions through a single slot. At
// most one call is outstanding; submitting while one is pending
// replaces it, and the replaced call resolves with ErrSuperseded. A
// late response from a replaced call is discarded, never surfaced.
type Register struct {
	scorer Scorer
	logger *slog.Logger

	mu      sync.Mutex
	seq     uint64
	pending *call
	state   State
	result  *domain.ScoringResponse
	err     error
}

// NewRegister creates a register in the idle state.
func NewRegister(scorer Scorer, logger *slog.Logger) *Register {
	return &Register{
		scorer: scorer,
		logger: logger.With("component", "scoring_register"),
		state:  StateIdle,
	}
}

// Do submits one request and blocks until it resolves. If a newer
// submission replaces this one before the scoring service answers, Do
// returns domain.ErrSuperseded.
func (r *Register) Do(ctx context.Context, req domain.ScoringRequest) (*domain.ScoringResponse, error) {
	callCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.seq++
	seq := r.seq
	c := &call{done: make(chan struct{}), cancel: cancel}

	if prev := r.pending; prev != nil {
		r.logger.Info("submission superseded", "seq", seq)
		prev.err = domain.ErrSuperseded
		close(prev.done)
		prev.cancel()
	}
	r.pending = c
	r.state = StatePending
	r.mu.Unlock()

	go func() {
		resp, err := r.scorer.Score(callCtx, req)

		r.mu.Lock()
		defer r.mu.Unlock()

		if r.pending != c {
			// Replaced while in flight. The caller was already
			// released; drop the late response.
			r.logger.Debug("discarding superseded response", "seq", seq)
			return
		}
		r.pending = nil

		if err != nil {
			r.state = StateFailed
			r.err = err
		} else {
			r.state = StateSucceeded
			r.result = resp
			r.err = nil
		}

		c.resp, c.err = resp, err
		close(c.done)
	}()

	select {
	case <-c.done:
		return c.resp, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot returns the register's current state. The returned response
// pointer is shared and must be treated as read-only.
func (r *Register) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{State: r.state, Result: r.result, Err: r.err}
}
