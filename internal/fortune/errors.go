package fortune

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidMachineType = errors.New("invalid machine type")
	ErrEmptyMessage       = errors.New("message must not be empty")
	ErrConfiguration      = errors.New("catalog misconfigured")
	ErrInvalidInput       = errors.New("no usable options")
)

// Error kinds, used as metric labels, event fields and message codes.
const (
	KindInvalidMachine = "invalid_machine"
	KindEmptyMessage   = "empty_message"
	KindConfiguration  = "configuration"
	KindInvalidInput   = "invalid_input"
	KindInternal       = "internal"
)

// InvalidMachineTypeError indicates a machine label outside the catalog.
type InvalidMachineTypeError struct {
	Machine string
}

func (e *InvalidMachineTypeError) Error() string {
	return fmt.Sprintf("invalid machine type: %q", e.Machine)
}

func (e *InvalidMachineTypeError) Unwrap() error {
	return ErrInvalidMachineType
}

// ConfigurationError indicates a catalog defect. It aborts the draw it was
// raised in and nothing else.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog misconfigured: %s: %v", e.Reason, e.Err)
	}
	return "catalog misconfigured: " + e.Reason
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// Kind maps err to a stable error kind. Errors from other packages can
// report their own kind by implementing Kind() string.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrInvalidMachineType):
		return KindInvalidMachine
	case errors.Is(err, ErrEmptyMessage):
		return KindEmptyMessage
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	}

	var k interface{ Kind() string }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}
