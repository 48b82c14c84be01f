package envstore

import (
	"context"
	"errors"
	"time"
)

// Default per-call bounds
const (
	DefaultMutationTimeout = 30 * time.Second
	DefaultQueryTimeout    = 5 * time.Second
)

// timeoutStore bounds every call of the wrapped store with its own deadline
type timeoutStore struct {
	inner    Store
	mutation time.Duration
	query    time.Duration
}

// WithTimeouts wraps store so that Set and Unset run under the mutation
// timeout and Get under the query timeout. A non-positive duration falls
// back to the default. Deadline failures surface as EnvError{Kind: TimedOut}.
func WithTimeouts(store Store, mutation, query time.Duration) Store {
	if mutation <= 0 {
		mutation = DefaultMutationTimeout
	}
	if query <= 0 {
		query = DefaultQueryTimeout
	}
	return &timeoutStore{inner: store, mutation: mutation, query: query}
}

func (s *timeoutStore) Name() string {
	return s.inner.Name()
}

func (s *timeoutStore) Get(ctx context.Context, name string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.query)
	defer cancel()

	value, ok, err := s.inner.Get(ctx, name)
	return value, ok, classifyDeadline(ctx, name, err)
}

func (s *timeoutStore) Set(ctx context.Context, name, value string) error {
	ctx, cancel := context.WithTimeout(ctx, s.mutation)
	defer cancel()

	return classifyDeadline(ctx, name, s.inner.Set(ctx, name, value))
}

func (s *timeoutStore) Unset(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.mutation)
	defer cancel()

	return classifyDeadline(ctx, name, s.inner.Unset(ctx, name))
}

// classifyDeadline turns a deadline hit into a TimedOut EnvError unless the
// backend already classified it
func classifyDeadline(ctx context.Context, name string, err error) error {
	if err == nil {
		return nil
	}
	var envErr *EnvError
	if errors.As(err, &envErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &EnvError{Kind: TimedOut, Var: name, Err: err}
	}
	return &EnvError{Kind: OpFailed, Var: name, Err: err}
}
