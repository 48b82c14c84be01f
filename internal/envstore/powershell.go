package envstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"ezswitch/internal/utils"

	"github.com/rs/zerolog/log"
)

// ScriptRunner executes a PowerShell script and returns its standard output
// and standard error
type ScriptRunner func(ctx context.Context, exe, script string) (stdout, stderr []byte, err error)

// PowerShellStore writes user-scoped variables through
// [System.Environment]::SetEnvironmentVariable(..., 'User')
type PowerShellStore struct {
	exe string
	run ScriptRunner
}

// PowerShellOption configures a PowerShellStore
type PowerShellOption func(*PowerShellStore)

// WithExecutable overrides the PowerShell executable
func WithExecutable(exe string) PowerShellOption {
	return func(s *PowerShellStore) { s.exe = exe }
}

// WithScriptRunner replaces the process runner
func WithScriptRunner(run ScriptRunner) PowerShellOption {
	return func(s *PowerShellStore) { s.run = run }
}

// NewPowerShellStore creates the PowerShell-backed store
func NewPowerShellStore(opts ...PowerShellOption) *PowerShellStore {
	s := &PowerShellStore{exe: defaultPowerShell(), run: execScript}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultPowerShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "pwsh"
}

func (s *PowerShellStore) Name() string { return "powershell" }

func (s *PowerShellStore) Get(ctx context.Context, name string) (string, bool, error) {
	script := fmt.Sprintf("[System.Environment]::GetEnvironmentVariable(%s, 'User')", utils.PowerShellQuote(name))
	stdout, err := s.exec(ctx, name, script)
	if err != nil {
		return "", false, err
	}

	value := strings.TrimRight(string(stdout), "\r\n")
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *PowerShellStore) Set(ctx context.Context, name, value string) error {
	script := fmt.Sprintf("[System.Environment]::SetEnvironmentVariable(%s, %s, 'User')",
		utils.PowerShellQuote(name), utils.PowerShellQuote(value))
	_, err := s.exec(ctx, name, script)
	return err
}

func (s *PowerShellStore) Unset(ctx context.Context, name string) error {
	script := fmt.Sprintf("[System.Environment]::SetEnvironmentVariable(%s, $null, 'User')", utils.PowerShellQuote(name))
	_, err := s.exec(ctx, name, script)
	return err
}

func (s *PowerShellStore) exec(ctx context.Context, name, script string) ([]byte, error) {
	stdout, stderr, err := s.run(ctx, s.exe, script)
	if err == nil {
		return stdout, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		log.Warn().Str("var", name).Msg("powershell call timed out")
		return nil, &EnvError{Kind: TimedOut, Var: name, Err: err}
	}

	msg := strings.TrimSpace(string(stderr))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	log.Debug().Err(err).Str("var", name).Msg("powershell call failed")
	return nil, &EnvError{Kind: ProcessFailed, Var: name, Err: err}
}

func execScript(ctx context.Context, exe, script string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, exe, "-NoProfile", "-NonInteractive", "-Command", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
