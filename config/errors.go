package config

import "fmt"

// IoOp names the persistence step that failed
type IoOp string

const (
	IoRead  IoOp = "read"
	IoWrite IoOp = "write"
	IoParse IoOp = "parse"
)

// IoError is returned by settings persistence
type IoError struct {
	Op   IoOp
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("failed to %s settings file %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}
