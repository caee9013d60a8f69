// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads encoderstat settings from a TOML file
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Thermoquad/encoderstat/pkg/rls"
)

// Config holds the connection and decoding settings
type Config struct {
	Resolution     uint32
	Interval       time.Duration
	MaxJumpDegrees float64

	Serial    SerialConfig
	WebSocket WebSocketConfig
	SPI       SPIConfig
	Simulate  bool
}

// SerialConfig selects a USB-serial SPI bridge
type SerialConfig struct {
	Port        string
	Baud        int
	ReadTimeout time.Duration
}

// WebSocketConfig selects a remote bridge
type WebSocketConfig struct {
	URL         string
	Username    string
	NoSSLVerify bool
}

// SPIConfig selects a local spidev bus with a GPIO chip select
type SPIConfig struct {
	Device  string
	CSPin   string
	SpeedHz int64
	Mode    int
	CSSetup time.Duration
}

type fileConfig struct {
	Resolution     uint32  `toml:"resolution"`
	Interval       string  `toml:"interval"`
	MaxJumpDegrees float64 `toml:"max_jump_degrees"`
	Simulate       bool    `toml:"simulate"`

	Serial struct {
		Port          string `toml:"port"`
		Baud          int    `toml:"baud"`
		ReadTimeoutMS int64  `toml:"read_timeout_ms"`
	} `toml:"serial"`

	WebSocket struct {
		URL         string `toml:"url"`
		Username    string `toml:"username"`
		NoSSLVerify bool   `toml:"no_ssl_verify"`
	} `toml:"websocket"`

	SPI struct {
		Device    string `toml:"device"`
		CSPin     string `toml:"cs_pin"`
		SpeedHz   int64  `toml:"speed_hz"`
		Mode      int    `toml:"mode"`
		CSSetupUS int64  `toml:"cs_setup_us"`
	} `toml:"spi"`
}

// Default returns the settings used when no file or flag overrides them
func Default() Config {
	return Config{
		Resolution:     rls.Resolution18,
		Interval:       10 * time.Millisecond,
		MaxJumpDegrees: rls.DefaultMaxJumpDegrees,
		Serial: SerialConfig{
			Baud:        115200,
			ReadTimeout: 100 * time.Millisecond,
		},
		SPI: SPIConfig{
			SpeedHz: 1_000_000,
			Mode:    1,
			CSSetup: time.Microsecond,
		},
	}
}

// Load reads a TOML file on top of the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("resolution") {
		cfg.Resolution = raw.Resolution
	}
	if meta.IsDefined("interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Interval))
		if err != nil {
			return Config{}, fmt.Errorf("parse interval: %w", err)
		}
		cfg.Interval = d
	}
	if meta.IsDefined("max_jump_degrees") {
		cfg.MaxJumpDegrees = raw.MaxJumpDegrees
	}
	if meta.IsDefined("simulate") {
		cfg.Simulate = raw.Simulate
	}

	if meta.IsDefined("serial", "port") {
		cfg.Serial.Port = strings.TrimSpace(raw.Serial.Port)
	}
	if meta.IsDefined("serial", "baud") {
		cfg.Serial.Baud = raw.Serial.Baud
	}
	if meta.IsDefined("serial", "read_timeout_ms") {
		cfg.Serial.ReadTimeout = time.Duration(raw.Serial.ReadTimeoutMS) * time.Millisecond
	}

	if meta.IsDefined("websocket", "url") {
		cfg.WebSocket.URL = strings.TrimSpace(raw.WebSocket.URL)
	}
	if meta.IsDefined("websocket", "username") {
		cfg.WebSocket.Username = raw.WebSocket.Username
	}
	if meta.IsDefined("websocket", "no_ssl_verify") {
		cfg.WebSocket.NoSSLVerify = raw.WebSocket.NoSSLVerify
	}

	if meta.IsDefined("spi", "device") {
		cfg.SPI.Device = strings.TrimSpace(raw.SPI.Device)
	}
	if meta.IsDefined("spi", "cs_pin") {
		cfg.SPI.CSPin = strings.TrimSpace(raw.SPI.CSPin)
	}
	if meta.IsDefined("spi", "speed_hz") {
		cfg.SPI.SpeedHz = raw.SPI.SpeedHz
	}
	if meta.IsDefined("spi", "mode") {
		cfg.SPI.Mode = raw.SPI.Mode
	}
	if meta.IsDefined("spi", "cs_setup_us") {
		cfg.SPI.CSSetup = time.Duration(raw.SPI.CSSetupUS) * time.Microsecond
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for values the decoder or transports reject
func Validate(cfg Config) error {
	if cfg.Resolution == 0 {
		return fmt.Errorf("config resolution must be greater than zero")
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("config interval must not be negative")
	}
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("config serial baud must be positive")
	}
	if cfg.SPI.Mode < 0 || cfg.SPI.Mode > 3 {
		return fmt.Errorf("config spi mode %d invalid (0-3)", cfg.SPI.Mode)
	}
	if cfg.SPI.SpeedHz <= 0 {
		return fmt.Errorf("config spi speed must be positive")
	}
	if cfg.SPI.Device != "" && cfg.SPI.CSPin == "" {
		return fmt.Errorf("config spi cs_pin required when spi device is set")
	}
	return nil
}
