package envstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"ezswitch/config/storage"

	"github.com/joho/godotenv"
)

// DotenvFileName is the dotenv file kept in the config directory
const DotenvFileName = "env"

// DotenvStore keeps variables in a dotenv file that shells source through
// `ezswitch load-env`
type DotenvStore struct {
	path string
	mu   sync.Mutex
}

// NewDotenvStore creates a store backed by the dotenv file at path
func NewDotenvStore(path string) *DotenvStore {
	return &DotenvStore{path: path}
}

func (s *DotenvStore) Name() string { return "dotenv" }

// Path returns the dotenv file location
func (s *DotenvStore) Path() string { return s.path }

func (s *DotenvStore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vars, err := s.read()
	if err != nil {
		return "", false, &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	value, ok := vars[name]
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *DotenvStore) Set(ctx context.Context, name, value string) error {
	return s.update(ctx, name, func(vars map[string]string) {
		vars[name] = value
	})
}

func (s *DotenvStore) Unset(ctx context.Context, name string) error {
	return s.update(ctx, name, func(vars map[string]string) {
		delete(vars, name)
	})
}

// Vars returns every variable in the file
func (s *DotenvStore) Vars() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *DotenvStore) update(ctx context.Context, name string, fn func(map[string]string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vars, err := s.read()
	if err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	fn(vars)

	content, err := marshalDotenv(vars)
	if err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: fmt.Errorf("failed to encode %s: %w", s.path, err)}
	}
	if content != "" {
		content += "\n"
	}
	if err := storage.AtomicWrite(s.path, []byte(content), 0600); err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	return nil
}

// marshalDotenv is godotenv.Marshal except that integers are only written
// bare when they read back unchanged. Marshal turns "0123" into 123.
func marshalDotenv(vars map[string]string) (string, error) {
	content, err := godotenv.Marshal(vars)
	if err != nil || content == "" {
		return content, err
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		v := vars[key]
		if n, err := strconv.Atoi(v); err == nil && strconv.Itoa(n) != v {
			lines[i] = fmt.Sprintf("%s=%q", key, v)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *DotenvStore) read() (map[string]string, error) {
	vars, err := godotenv.Read(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return vars, nil
}
