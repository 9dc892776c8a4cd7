package wifi

import (
	"errors"
	"fmt"
)

var (
	// ErrAssociationFailed indicates the retry budget was spent without
	// getting an address.
	ErrAssociationFailed = errors.New("association failed")
	// ErrAssociationTimeout indicates no outcome arrived in time.
	ErrAssociationTimeout = errors.New("association timeout")
	// ErrRadioStopped indicates the radio closed its event stream before
	// an outcome was reached.
	ErrRadioStopped = errors.New("radio stopped")
	// ErrInterfaceNotFound indicates the wireless interface doesn't exist.
	ErrInterfaceNotFound = errors.New("wireless interface not found")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
