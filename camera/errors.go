package camera

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ConfigError reports a camera option that cannot be used.
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
	return fmt.Sprintf("invalid camera %s: %s", e.Field, e.Message)
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
