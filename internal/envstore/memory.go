package envstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps variables in process memory. It backs --dry-run and
// tests, and can be told to fail or stall on chosen variables.
type MemoryStore struct {
	mu     sync.Mutex
	vars   map[string]string
	calls  []Op
	fail   map[string]error
	delay  time.Duration
	gets   int
	getErr error
}

// NewMemoryStore creates a store seeded with initial values
func NewMemoryStore(initial map[string]string) *MemoryStore {
	vars := make(map[string]string, len(initial))
	for k, v := range initial {
		vars[k] = v
	}
	return &MemoryStore{vars: vars, fail: make(map[string]error)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := m.wait(ctx); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.vars[name]
	return value, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, name, value string) error {
	return m.mutate(ctx, SetOp(name, value))
}

func (m *MemoryStore) Unset(ctx context.Context, name string) error {
	return m.mutate(ctx, UnsetOp(name))
}

func (m *MemoryStore) mutate(ctx context.Context, op Op) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
	if err, ok := m.fail[op.Name]; ok {
		return &EnvError{Kind: OpFailed, Var: op.Name, Err: err}
	}
	if op.Kind == OpSet {
		m.vars[op.Name] = op.Value
	} else {
		delete(m.vars, op.Name)
	}
	return nil
}

func (m *MemoryStore) wait(ctx context.Context) error {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FailOn makes every mutation of name fail with err
func (m *MemoryStore) FailOn(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = fmt.Errorf("injected failure")
	}
	m.fail[name] = err
}

// FailGets makes every Get fail with err; nil clears it
func (m *MemoryStore) FailGets(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// SetDelay stalls every call for d, honouring context cancellation
func (m *MemoryStore) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns the mutations received so far, in order
func (m *MemoryStore) Calls() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Op, len(m.calls))
	copy(out, m.calls)
	return out
}

// Vars returns a copy of the current variables
func (m *MemoryStore) Vars() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out
}

// GetCount returns how many Get calls were made
func (m *MemoryStore) GetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}
