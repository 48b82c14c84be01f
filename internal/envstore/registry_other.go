//go:build !windows

package envstore

import (
	"context"
	"errors"
)

// ErrRegistryUnsupported is returned when the registry backend is requested
// outside Windows
var ErrRegistryUnsupported = errors.New("registry backend is only available on Windows")

// RegistryStore is unavailable on this platform
type RegistryStore struct{}

// NewRegistryStore always fails outside Windows
func NewRegistryStore() (*RegistryStore, error) {
	return nil, ErrRegistryUnsupported
}

func (s *RegistryStore) Name() string { return "registry" }

func (s *RegistryStore) Get(ctx context.Context, name string) (string, bool, error) {
	return "", false, &EnvError{Kind: OpFailed, Var: name, Err: ErrRegistryUnsupported}
}

func (s *RegistryStore) Set(ctx context.Context, name, value string) error {
	return &EnvError{Kind: OpFailed, Var: name, Err: ErrRegistryUnsupported}
}

func (s *RegistryStore) Unset(ctx context.Context, name string) error {
	return &EnvError{Kind: OpFailed, Var: name, Err: ErrRegistryUnsupported}
}
