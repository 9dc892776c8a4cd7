package uart

import (
	"errors"
	"fmt"
)

// ErrNoDevice indicates no serial device was configured.
var ErrNoDevice = errors.New("no serial device")

// ConfigError reports an invalid line setting.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("UART: invalid %s: %s", e.Field, e.Reason)
}
