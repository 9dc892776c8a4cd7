package uart

import (
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// Port is an opened serial line.
// Read returns (0, nil) when the read timeout expires without data.
type Port interface {
	io.ReadWriteCloser
	// Name returns the device path.
	Name() string
	// SetReadTimeout bounds every subsequent Read.
	SetReadTimeout(time.Duration) error
}

type serialPort struct {
	serial.Port
	name string
}

func (p *serialPort) Name() string {
	return p.name
}

// Open opens the serial device with the line settings and read timeout.
func Open(conf Config) (Port, error) {
	if conf.Device == "" {
		return nil, ErrNoDevice
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	mode := &serial.Mode{
		BaudRate: conf.Baud,
		DataBits: conf.DataBits,
		Parity:   serialParity(conf.Parity),
		StopBits: serial.OneStopBit,
	}
	if conf.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	p, err := serial.Open(conf.Device, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", conf.Device)
	}
	if err = p.SetReadTimeout(conf.ReadTimeout); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "set read timeout on %s", conf.Device)
	}
	glog.Infof("UART: %s opened at %s", conf.Device, conf)
	return &serialPort{Port: p, name: conf.Device}, nil
}

func serialParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	}
	return serial.NoParity
}
