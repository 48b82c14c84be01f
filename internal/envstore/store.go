// Package envstore reads and writes the user-scoped environment variables
// that select the assistant's credentials and endpoint.
package envstore

import (
	"context"
	"errors"
	"fmt"

	"ezswitch/config/models"
)

// Variable names managed by ezswitch
const (
	AuthTokenVar = "ANTHROPIC_AUTH_TOKEN"
	BaseURLVar   = "ANTHROPIC_BASE_URL"
)

// ManagedVars lists the managed variables in the order they are written
var ManagedVars = []string{AuthTokenVar, BaseURLVar}

// Store is a persistent user-scoped environment
type Store interface {
	// Name identifies the backend, e.g. "powershell" or "dotenv"
	Name() string
	// Get returns the variable's value; ok is false when it is unset
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string) error
	Unset(ctx context.Context, name string) error
}

// OpKind is the kind of environment mutation
type OpKind int

const (
	OpSet OpKind = iota
	OpUnset
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "set"
	case OpUnset:
		return "unset"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is a single environment mutation. Value is ignored for OpUnset.
type Op struct {
	Kind  OpKind
	Name  string
	Value string
}

// SetOp builds a Set operation
func SetOp(name, value string) Op {
	return Op{Kind: OpSet, Name: name, Value: value}
}

// UnsetOp builds an Unset operation
func UnsetOp(name string) Op {
	return Op{Kind: OpUnset, Name: name}
}

func (o Op) String() string {
	if o.Kind == OpSet {
		return fmt.Sprintf("set %s", o.Name)
	}
	return fmt.Sprintf("unset %s", o.Name)
}

// ErrorKind classifies environment failures
type ErrorKind int

const (
	// OpFailed means the backend rejected the operation
	OpFailed ErrorKind = iota
	// ProcessFailed means a helper process could not run or exited non-zero
	ProcessFailed
	// TimedOut means the call exceeded its deadline. Never retried.
	TimedOut
)

func (k ErrorKind) String() string {
	switch k {
	case OpFailed:
		return "operation failed"
	case ProcessFailed:
		return "process failed"
	case TimedOut:
		return "timed out"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// EnvError is returned by Store implementations
type EnvError struct {
	Kind ErrorKind
	Var  string
	Err  error
}

func (e *EnvError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Var, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Var, e.Kind, e.Err)
}

func (e *EnvError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is an EnvError of kind TimedOut
func IsTimeout(err error) bool {
	var envErr *EnvError
	return errors.As(err, &envErr) && envErr.Kind == TimedOut
}

// ApplyError records which operation of a sequence failed. Operations
// before Index were applied and stay applied.
type ApplyError struct {
	Index int
	Op    Op
	Err   error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Op, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// ApplyOps applies ops in order and stops at the first failure
func ApplyOps(ctx context.Context, store Store, ops []Op) error {
	for i, op := range ops {
		var err error
		switch op.Kind {
		case OpSet:
			err = store.Set(ctx, op.Name, op.Value)
		case OpUnset:
			err = store.Unset(ctx, op.Name)
		default:
			err = &EnvError{Kind: OpFailed, Var: op.Name, Err: fmt.Errorf("unknown op kind %v", op.Kind)}
		}
		if err != nil {
			return &ApplyError{Index: i, Op: op, Err: err}
		}
	}
	return nil
}

// ReadSnapshot reads the managed variables. Nothing is cached.
func ReadSnapshot(ctx context.Context, store Store) (models.EnvSnapshot, error) {
	var snap models.EnvSnapshot

	token, ok, err := store.Get(ctx, AuthTokenVar)
	if err != nil {
		return models.EnvSnapshot{}, fmt.Errorf("failed to read %s: %w", AuthTokenVar, err)
	}
	if ok {
		snap.AuthToken = token
	}

	baseURL, ok, err := store.Get(ctx, BaseURLVar)
	if err != nil {
		return models.EnvSnapshot{}, fmt.Errorf("failed to read %s: %w", BaseURLVar, err)
	}
	if ok {
		snap.BaseURL = baseURL
	}

	return snap, nil
}
