package wifi

import (
	"fmt"
	"io"
	"time"
)

// AuthMode is the authentication used by the access point.
type AuthMode int

const (
	// AuthOpen means no authentication.
	AuthOpen AuthMode = iota
	// AuthWPA2PSK means WPA2 with a pre-shared key.
	AuthWPA2PSK
)

// String implements fmt.Stringer.
func (m AuthMode) String() string {
	switch m {
	case AuthOpen:
		return "open"
	case AuthWPA2PSK:
		return "wpa2-psk"
	}
	return fmt.Sprintf("auth(%d)", int(m))
}

// Defaults shared by both nodes.
const (
	DefaultSSID       = "Terminal_AP"
	DefaultPassphrase = "super-strong-password"
	DefaultChannel    = 11
	DefaultMaxClients = 4
	DefaultMaxRetries = 10
)

// APConfig configures the soft access point.
type APConfig struct {
	Interface   string `yaml:"interface"`
	SSID        string `yaml:"ssid"`
	Passphrase  string `yaml:"passphrase"`
	Channel     int    `yaml:"channel"`
	MaxClients  int    `yaml:"max_clients"`
	PMFRequired bool   `yaml:"pmf_required"`
}

// DefaultAPConfig returns the access point defaults.
func DefaultAPConfig() APConfig {
	return APConfig{
		Interface:   "wlan0",
		SSID:        DefaultSSID,
		Passphrase:  DefaultPassphrase,
		Channel:     DefaultChannel,
		MaxClients:  DefaultMaxClients,
		PMFRequired: true,
	}
}

// EffectiveAuth falls back to open authentication with an empty passphrase.
func (c *APConfig) EffectiveAuth() AuthMode {
	if c.Passphrase == "" {
		return AuthOpen
	}
	return AuthWPA2PSK
}

// Validate checks the configuration.
func (c *APConfig) Validate() error {
	if err := validateSSID(c.SSID); err != nil {
		return err
	}
	if c.EffectiveAuth() == AuthWPA2PSK {
		if err := validatePassphrase(c.Passphrase); err != nil {
			return err
		}
	}
	if c.Channel < 1 || c.Channel > 14 {
		return &ConfigError{Field: "channel", Reason: fmt.Sprintf("%d not in 1..14", c.Channel)}
	}
	if c.MaxClients < 1 || c.MaxClients > 10 {
		return &ConfigError{Field: "max_clients", Reason: fmt.Sprintf("%d not in 1..10", c.MaxClients)}
	}
	return nil
}

// WriteHostapd renders the configuration in hostapd.conf format.
func (c *APConfig) WriteHostapd(w io.Writer) error {
	p := &confPrinter{w: w}
	p.set("interface", c.Interface)
	p.set("driver", "nl80211")
	p.set("ssid", c.SSID)
	p.set("hw_mode", "g")
	p.set("channel", c.Channel)
	p.set("max_num_sta", c.MaxClients)
	switch c.EffectiveAuth() {
	case AuthOpen:
		p.set("auth_algs", 1)
		p.set("wpa", 0)
	case AuthWPA2PSK:
		p.set("auth_algs", 1)
		p.set("wpa", 2)
		p.set("wpa_passphrase", c.Passphrase)
		p.set("wpa_key_mgmt", "WPA-PSK")
		p.set("rsn_pairwise", "CCMP")
		if c.PMFRequired {
			p.set("ieee80211w", 2)
		}
	}
	return p.err
}

type confPrinter struct {
	w   io.Writer
	err error
}

func (p *confPrinter) set(key string, val interface{}) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, "%s=%v\n", key, val)
	}
}

// StationConfig configures the station side.
type StationConfig struct {
	Interface    string        `yaml:"interface"`
	SSID         string        `yaml:"ssid"`
	Passphrase   string        `yaml:"passphrase"`
	MaxRetries   int           `yaml:"max_retries"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultStationConfig returns the station defaults.
func DefaultStationConfig() StationConfig {
	return StationConfig{
		Interface:    "wlan0",
		SSID:         DefaultSSID,
		Passphrase:   DefaultPassphrase,
		MaxRetries:   DefaultMaxRetries,
		PollInterval: 2 * time.Second,
		Timeout:      time.Minute,
	}
}

// Validate checks the configuration.
func (c *StationConfig) Validate() error {
	if err := validateSSID(c.SSID); err != nil {
		return err
	}
	if c.Passphrase != "" {
		if err := validatePassphrase(c.Passphrase); err != nil {
			return err
		}
	}
	if c.MaxRetries < 0 {
		return &ConfigError{Field: "max_retries", Reason: "negative"}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Reason: "must be positive"}
	}
	return nil
}

func validateSSID(ssid string) error {
	if l := len(ssid); l == 0 || l > 32 {
		return &ConfigError{Field: "ssid", Reason: fmt.Sprintf("length %d not in 1..32", l)}
	}
	return nil
}

func validatePassphrase(pass string) error {
	if l := len(pass); l < 8 || l > 63 {
		return &ConfigError{Field: "passphrase", Reason: fmt.Sprintf("length %d not in 8..63", l)}
	}
	return nil
}
