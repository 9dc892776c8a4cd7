package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := New()
	require.Equal(t, "0.0.0.0:12345", c.Listen)
	require.Equal(t, "192.168.4.1:12345", c.Peer.Addr)
	require.Equal(t, 1, c.Peer.Attempts)
	require.Equal(t, "Terminal_AP", c.AP.SSID)
	require.Equal(t, 10, c.Station.MaxRetries)
	require.Equal(t, 115200, c.UART.Baud)
	require.Equal(t, time.Second, c.UART.ReadTimeout)
	require.NoError(t, c.Validate(RoleAP))
	require.NoError(t, c.Validate(RoleStation))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TERMLINK_PEER", "10.0.0.1:12345")
	t.Setenv("TERMLINK_UART", "/dev/ttyS1")
	t.Setenv("TERMLINK_MQTT_URL", "mqtt://localhost:1883/tl/")
	c := New()
	require.Equal(t, "10.0.0.1:12345", c.Peer.Addr)
	require.Equal(t, "/dev/ttyS1", c.UART.Device)
	require.Equal(t, "mqtt://localhost:1883/tl/", c.MQTTURL)
}

func TestFlagsOverrideFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "termlink.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
station:
  ssid: Lab_AP
  max_retries: 3
  timeout: 30s
peer:
  addr: 192.168.4.1:2000
shell: true
`), 0644))

	c := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs, RoleStation)
	require.NoError(t, fs.Parse([]string{"--config", file, "--max-retries", "5"}))
	require.NoError(t, c.Load(fs))

	require.Equal(t, "Lab_AP", c.Station.SSID)
	require.Equal(t, 5, c.Station.MaxRetries)
	require.Equal(t, 30*time.Second, c.Station.Timeout)
	require.Equal(t, "192.168.4.1:2000", c.Peer.Addr)
	require.True(t, c.Shell)
	require.Equal(t, file, c.File)
	require.Equal(t, "super-strong-password", c.Station.Passphrase)
}

func TestValidateAP(t *testing.T) {
	c := New()
	c.AP.Channel = 0
	require.Error(t, c.Validate(RoleAP))
	c = New()
	c.UART.Device = ""
	require.Error(t, c.Validate(RoleAP))
	c.VirtualUART = true
	require.NoError(t, c.Validate(RoleAP))
}

func TestLoadParseError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "termlink.yaml")
	require.NoError(t, os.WriteFile(file, []byte("station: [\n"), 0644))

	c := New()
	c.File = file
	err := c.Load(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse "+file)
	require.NotEqual(t, err, errors.Cause(err))
}
