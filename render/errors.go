package render

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ConfigError reports a render option that cannot be used.
type ConfigError struct {
	Field   string
	Message string

	frame xerrors.Frame
}

func newConfigError(field string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		frame:   xerrors.Caller(1),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *ConfigError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

// WorkerError reports a render worker that panicked.  The whole render fails
// rather than averaging an image that is missing that worker's samples.
type WorkerError struct {
	Worker int
	Value  interface{}
	Stack  []byte

	frame xerrors.Frame
}

func newWorkerError(worker int, value interface{}, stack []byte) *WorkerError {
	return &WorkerError{
		Worker: worker,
		Value:  value,
		Stack:  stack,
		frame:  xerrors.Caller(1),
	}
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("render worker %d panicked: %v", e.Worker, e.Value)
}

func (e *WorkerError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *WorkerError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
		p.Printf("%s", e.Stack)
	}
	return nil
}

func (e *WorkerError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
