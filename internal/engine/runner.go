package engine

import (
	"context"
	"sync"

	"ezswitch/internal/envstore"
)

// Events are called from the worker goroutine. Presentation layers must
// hand them over to their own loop. Nil callbacks are skipped.
type Events struct {
	StatusChanged func(Status)
	ApplyResult   func(ApplyResult)
}

// Runner runs applies and refreshes in the background, one at a time
type Runner struct {
	engine *Engine
	envs   envstore.Store
	events Events

	mu   sync.Mutex
	busy bool
}

// NewRunner creates a Runner
func NewRunner(engine *Engine, envs envstore.Store, events Events) *Runner {
	return &Runner{engine: engine, envs: envs, events: events}
}

// Pending tracks a background operation
type Pending struct {
	done   chan struct{}
	result ApplyResult
}

// Done is closed when the operation finishes
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the operation finishes or ctx ends. The operation is
// not cancelled when ctx ends.
func (p *Pending) Wait(ctx context.Context) (ApplyResult, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return ApplyResult{}, ctx.Err()
	}
}

// Busy reports whether an operation is running
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// Apply starts Engine.Apply in the background on the edits as they are now
func (r *Runner) Apply() (*Pending, error) {
	edits := r.engine.Edits()
	return r.start(func(ctx context.Context) ApplyResult {
		result := r.engine.applyEdits(ctx, r.envs, edits)
		if result.StatusRead {
			r.emitStatus(result.Status)
		}
		if r.events.ApplyResult != nil {
			r.events.ApplyResult(result)
		}
		return result
	})
}

// Refresh starts a status read in the background. The result carries only
// the Status fields.
func (r *Runner) Refresh() (*Pending, error) {
	return r.start(func(ctx context.Context) ApplyResult {
		status, err := r.engine.Refresh(ctx, r.envs)
		result := ApplyResult{Status: status, StatusErr: err, StatusRead: err == nil}
		if err == nil {
			r.emitStatus(status)
		}
		return result
	})
}

func (r *Runner) emitStatus(status Status) {
	if r.events.StatusChanged != nil {
		r.events.StatusChanged(status)
	}
}

func (r *Runner) start(fn func(context.Context) ApplyResult) (*Pending, error) {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.busy = true
	r.mu.Unlock()

	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.result = fn(context.Background())

		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()
	return p, nil
}
