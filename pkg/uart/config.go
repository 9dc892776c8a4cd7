package uart

import (
	"fmt"
	"time"
)

// Parity is the parity mode of the line.
type Parity string

// Parity modes.
const (
	ParityNone Parity = "none"
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

// Config configures the serial line. TxPin and RxPin document the wiring
// on boards where the line is routed through GPIOs, they don't affect a
// host serial device.
type Config struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	DataBits    int           `yaml:"data_bits"`
	Parity      Parity        `yaml:"parity"`
	StopBits    int           `yaml:"stop_bits"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	TxPin       int           `yaml:"tx_pin"`
	RxPin       int           `yaml:"rx_pin"`
}

// DefaultConfig returns 115200 8N1 with a 1s read timeout.
func DefaultConfig() Config {
	return Config{
		Baud:        115200,
		DataBits:    8,
		Parity:      ParityNone,
		StopBits:    1,
		ReadTimeout: time.Second,
		TxPin:       4,
		RxPin:       5,
	}
}

// String formats the line settings like "115200 8N1".
func (c Config) String() string {
	p := "N"
	switch c.Parity {
	case ParityOdd:
		p = "O"
	case ParityEven:
		p = "E"
	}
	return fmt.Sprintf("%d %d%s%d", c.Baud, c.DataBits, p, c.StopBits)
}

// Validate checks the line settings.
func (c *Config) Validate() error {
	if c.Baud <= 0 {
		return &ConfigError{Field: "baud", Reason: "must be positive"}
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return &ConfigError{Field: "data_bits", Reason: fmt.Sprintf("%d not in 5..8", c.DataBits)}
	}
	switch c.Parity {
	case ParityNone, ParityOdd, ParityEven:
	default:
		return &ConfigError{Field: "parity", Reason: fmt.Sprintf("unknown mode %q", c.Parity)}
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return &ConfigError{Field: "stop_bits", Reason: fmt.Sprintf("%d not 1 or 2", c.StopBits)}
	}
	if c.ReadTimeout <= 0 {
		return &ConfigError{Field: "read_timeout", Reason: "must be positive"}
	}
	return nil
}
