// Package config holds the settings of both node roles. Values come from
// built-in defaults, then environment variables, then an optional YAML
// file, then command line flags, each overriding the previous.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/termlink/pkg/link"
	"github.com/robotalks/termlink/pkg/uart"
	"github.com/robotalks/termlink/pkg/wifi"
)

// Role selects the node role.
type Role string

// Node roles.
const (
	RoleAP      Role = "ap"
	RoleStation Role = "sta"
)

// PeerConfig configures how the station reaches the access point.
type PeerConfig struct {
	Addr     string        `yaml:"addr"`
	Attempts int           `yaml:"attempts"`
	Timeout  time.Duration `yaml:"timeout"`
	Backoff  time.Duration `yaml:"backoff"`
}

// Config is the complete node configuration.
type Config struct {
	AP      wifi.APConfig      `yaml:"ap"`
	Station wifi.StationConfig `yaml:"station"`
	UART    uart.Config        `yaml:"uart"`

	Listen    string        `yaml:"listen"`
	Peer      PeerConfig    `yaml:"peer"`
	KeepAlive time.Duration `yaml:"keepalive"`

	// MQTTURL enables the monitor, e.g. mqtt://host:1883/termlink/
	MQTTURL string `yaml:"mqtt"`

	// HostapdConf is where the access point writes its hostapd.conf.
	HostapdConf string `yaml:"hostapd_conf"`
	// VirtualUART replaces the serial device with a pseudo-terminal.
	VirtualUART bool `yaml:"virtual_uart"`

	// Screen paints the display on stdout. The shell takes over stdout
	// so it disables the screen.
	Screen  bool   `yaml:"screen"`
	Viewer  string `yaml:"viewer"`
	Shell   bool   `yaml:"shell"`
	Columns int    `yaml:"columns"`

	// File is the YAML file loaded by Load.
	File string `yaml:"-"`
}

var defaultConfig = New()

// New creates a Config with built-in defaults and environment overrides.
func New() Config {
	c := Config{
		AP:        wifi.DefaultAPConfig(),
		Station:   wifi.DefaultStationConfig(),
		UART:      uart.DefaultConfig(),
		Listen:    link.DefaultListenAddr,
		KeepAlive: link.DefaultKeepAlive,
		Peer: PeerConfig{
			Addr:     link.DefaultPeerAddr,
			Attempts: 1,
			Timeout:  link.DefaultDialTimeout,
			Backoff:  link.DefaultBackoff,
		},
		Screen:  true,
		Columns: 40,
	}
	c.UART.Device = "/dev/ttyUSB0"
	if val := os.Getenv("TERMLINK_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	if val := os.Getenv("TERMLINK_UART"); val != "" {
		c.UART.Device = val
	}
	if val := os.Getenv("TERMLINK_PEER"); val != "" {
		c.Peer.Addr = val
	}
	if val := os.Getenv("TERMLINK_CONFIG"); val != "" {
		c.File = val
	}
	return c
}

// Default gets the process wide config bound by SetupFlags.
func Default() *Config {
	return &defaultConfig
}

// SetupFlags binds command line flags of the role to the default config.
func SetupFlags(role Role) {
	defaultConfig.BindFlags(pflag.CommandLine, role)
}

// BindFlags registers flags of the role on fs.
func (c *Config) BindFlags(fs *pflag.FlagSet, role Role) {
	fs.StringVar(&c.File, "config", c.File, "YAML configuration file.")
	fs.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL for monitoring, empty to disable.")
	fs.DurationVar(&c.KeepAlive, "keepalive", c.KeepAlive, "TCP keepalive period, negative to disable.")
	switch role {
	case RoleAP:
		fs.StringVar(&c.AP.Interface, "iface", c.AP.Interface, "Wireless interface of the access point.")
		fs.StringVar(&c.AP.SSID, "ssid", c.AP.SSID, "Network name.")
		fs.StringVar(&c.AP.Passphrase, "passphrase", c.AP.Passphrase, "WPA2 passphrase, empty for an open network.")
		fs.IntVar(&c.AP.Channel, "channel", c.AP.Channel, "Radio channel.")
		fs.IntVar(&c.AP.MaxClients, "max-clients", c.AP.MaxClients, "Maximum associated stations.")
		fs.BoolVar(&c.AP.PMFRequired, "pmf", c.AP.PMFRequired, "Require protected management frames.")
		fs.StringVar(&c.HostapdConf, "hostapd-conf", c.HostapdConf, "Write hostapd configuration to this file.")
		fs.StringVar(&c.Listen, "listen", c.Listen, "TCP listen address.")
		fs.StringVar(&c.UART.Device, "uart", c.UART.Device, "Serial device.")
		fs.IntVar(&c.UART.Baud, "baud", c.UART.Baud, "Serial baud rate.")
		fs.DurationVar(&c.UART.ReadTimeout, "uart-timeout", c.UART.ReadTimeout, "Serial read timeout.")
		fs.BoolVar(&c.VirtualUART, "pty", c.VirtualUART, "Use a pseudo-terminal instead of a serial device.")
	case RoleStation:
		fs.StringVar(&c.Station.Interface, "iface", c.Station.Interface, "Wireless interface of the station.")
		fs.StringVar(&c.Station.SSID, "ssid", c.Station.SSID, "Network name.")
		fs.StringVar(&c.Station.Passphrase, "passphrase", c.Station.Passphrase, "WPA2 passphrase.")
		fs.IntVar(&c.Station.MaxRetries, "max-retries", c.Station.MaxRetries, "Association retries.")
		fs.DurationVar(&c.Station.Timeout, "assoc-timeout", c.Station.Timeout, "Association timeout.")
		fs.StringVar(&c.Peer.Addr, "peer", c.Peer.Addr, "Access point TCP address.")
		fs.IntVar(&c.Peer.Attempts, "dial-attempts", c.Peer.Attempts, "Connect attempts.")
		fs.DurationVar(&c.Peer.Timeout, "dial-timeout", c.Peer.Timeout, "Timeout of one connect attempt.")
		fs.BoolVar(&c.Screen, "screen", c.Screen, "Paint the display on the terminal.")
		fs.StringVar(&c.Viewer, "viewer", c.Viewer, "Serve the display over websocket on this address.")
		fs.BoolVar(&c.Shell, "shell", c.Shell, "Run the interactive shell.")
		fs.IntVar(&c.Columns, "columns", c.Columns, "Display width in columns.")
	}
}

// Load reads the YAML file when set. Flags changed on fs keep their
// values over the file.
func (c *Config) Load(fs *pflag.FlagSet) error {
	if c.File == "" {
		return nil
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	changed := make(map[string]string)
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}
	file := c.File
	if err = yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse %s", file)
	}
	c.File = file
	for name, val := range changed {
		if err = fs.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings used by the role.
func (c *Config) Validate(role Role) error {
	switch role {
	case RoleAP:
		if err := c.AP.Validate(); err != nil {
			return err
		}
		if !c.VirtualUART {
			if c.UART.Device == "" {
				return uart.ErrNoDevice
			}
		}
		return c.UART.Validate()
	case RoleStation:
		if c.Peer.Addr == "" {
			return errors.New("peer address required")
		}
		return c.Station.Validate()
	}
	return errors.Errorf("unknown role %q", role)
}
