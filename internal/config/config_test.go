// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "encoderstat.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesFileValues(t *testing.T) {
	path := writeConfig(t, `
resolution = 131072
interval = "25ms"
max_jump_degrees = 30.0

[serial]
port = " /dev/ttyACM0 "
baud = 921600
read_timeout_ms = 250

[spi]
device = "SPI0.0"
cs_pin = "GPIO8"
speed_hz = 2000000
mode = 1
cs_setup_us = 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint32(rls.Resolution17), cfg.Resolution)
	require.Equal(t, 25*time.Millisecond, cfg.Interval)
	require.Equal(t, 30.0, cfg.MaxJumpDegrees)
	require.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	require.Equal(t, 921600, cfg.Serial.Baud)
	require.Equal(t, 250*time.Millisecond, cfg.Serial.ReadTimeout)
	require.Equal(t, "SPI0.0", cfg.SPI.Device)
	require.Equal(t, "GPIO8", cfg.SPI.CSPin)
	require.Equal(t, int64(2000000), cfg.SPI.SpeedHz)
	require.Equal(t, 2*time.Microsecond, cfg.SPI.CSSetup)
}

func TestLoad_KeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[websocket]
url = "wss://slate.local/encoder"
username = "admin"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	def := Default()
	require.Equal(t, def.Resolution, cfg.Resolution)
	require.Equal(t, def.Interval, cfg.Interval)
	require.Equal(t, def.Serial.Baud, cfg.Serial.Baud)
	require.Equal(t, "wss://slate.local/encoder", cfg.WebSocket.URL)
	require.Equal(t, "admin", cfg.WebSocket.Username)
	require.False(t, cfg.WebSocket.NoSSLVerify)
}

func TestLoad_RejectsZeroResolution(t *testing.T) {
	_, err := Load(writeConfig(t, "resolution = 0\n"))
	require.Error(t, err)
}

func TestLoad_RejectsBadInterval(t *testing.T) {
	_, err := Load(writeConfig(t, `interval = "soon"`))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	cfg.SPI.Mode = 4
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.SPI.Device = "SPI0.0"
	require.Error(t, Validate(cfg))
}
