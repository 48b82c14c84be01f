//go:build windows

package envstore

import (
	"context"
	"errors"
	"unsafe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const environmentKey = `Environment`

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// RegistryStore writes HKCU\Environment directly
type RegistryStore struct{}

// NewRegistryStore creates the registry-backed store
func NewRegistryStore() (*RegistryStore, error) {
	return &RegistryStore{}, nil
}

func (s *RegistryStore) Name() string { return "registry" }

func (s *RegistryStore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.QUERY_VALUE)
	if err != nil {
		return "", false, &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	defer key.Close()

	value, _, err := key.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *RegistryStore) Set(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.SET_VALUE)
	if err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	defer key.Close()

	if err := key.SetStringValue(name, value); err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	broadcastEnvironmentChange()
	return nil
}

func (s *RegistryStore) Unset(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, environmentKey, registry.SET_VALUE)
	if err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	defer key.Close()

	if err := key.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	broadcastEnvironmentChange()
	return nil
}

// broadcastEnvironmentChange tells running programs that the user
// environment changed, as SetEnvironmentVariable does
func broadcastEnvironmentChange() {
	param, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return
	}
	var result uintptr
	r, _, callErr := procSendMessageTimeoutW.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(param)),
		smtoAbortIfHung,
		5000,
		uintptr(unsafe.Pointer(&result)),
	)
	if r == 0 {
		log.Debug().Err(callErr).Msg("environment change broadcast failed")
	}
}
