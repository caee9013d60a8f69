// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/Thermoquad/encoderstat/internal/config"
	"github.com/Thermoquad/encoderstat/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	resolution uint32
	interval   time.Duration
	maxJump    float64

	// Serial bridge flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Local SPI flags
	spiDevice string
	csPin     string
	spiSpeed  int64

	simulate bool

	// Effective settings after config file and flags are merged
	settings config.Config
)

var rootCmd = &cobra.Command{
	Use:   "encoderstat",
	Short: "RLS Absolute Encoder Frame Analyzer",
	Long: `Encoderstat - A CLI tool for reading and analyzing RLS absolute encoder SPI frames.

Each read clocks a 6-byte frame out of the encoder, checks its CRC-8 and
status bit, and converts the 18-bit position into degrees. Commands cover
single reads, continuous logging and error detection.

Connection modes:
  SPI:       --spi SPI0.0 --cs GPIO8 [--speed 1000000]
  Serial:    --port /dev/ttyACM0 [--baud 115200]  (USB-serial SPI bridge)
  WebSocket: --url ws://host/path [--username user]
  Simulator: --simulate

Settings can also be read from a TOML file with --config; flags override it.

For WebSocket authentication, the password is read from the ENCODERSTAT_PASSWORD
environment variable, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	flags.Uint32VarP(&resolution, "resolution", "r", 0, "Counts per revolution (131072, 262144, 524288)")
	flags.DurationVar(&interval, "interval", 0, "Delay between frame reads")
	flags.Float64Var(&maxJump, "max-jump", 0, "Largest angle change between reads before flagging (degrees)")

	// Serial bridge flags
	flags.StringVarP(&portName, "port", "p", "", "Serial port of the SPI bridge")
	flags.IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only)")

	// WebSocket bridge flags
	flags.StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	flags.StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	flags.BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Local SPI flags
	flags.StringVar(&spiDevice, "spi", "", "SPI port (e.g. SPI0.0 or /dev/spidev0.0)")
	flags.StringVar(&csPin, "cs", "", "GPIO used as chip select (e.g. GPIO8)")
	flags.Int64Var(&spiSpeed, "speed", 0, "SPI clock in Hz")

	flags.BoolVar(&simulate, "simulate", false, "Read from a simulated encoder")
}

// loadSettings merges defaults, the config file and explicitly set flags
func loadSettings(cmd *cobra.Command, args []string) error {
	logging.Init("encoderstat")

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log.Debug().Str("path", configPath).Msg("config loaded")
	}

	flags := cmd.Flags()
	if flags.Changed("resolution") {
		cfg.Resolution = resolution
	}
	if flags.Changed("interval") {
		cfg.Interval = interval
	}
	if flags.Changed("max-jump") {
		cfg.MaxJumpDegrees = maxJump
	}
	if flags.Changed("port") {
		cfg.Serial.Port = portName
	}
	if flags.Changed("baud") {
		cfg.Serial.Baud = baudRate
	}
	if flags.Changed("url") {
		cfg.WebSocket.URL = wsURL
	}
	if flags.Changed("username") {
		cfg.WebSocket.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		cfg.WebSocket.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("spi") {
		cfg.SPI.Device = spiDevice
	}
	if flags.Changed("cs") {
		cfg.SPI.CSPin = csPin
	}
	if flags.Changed("speed") {
		cfg.SPI.SpeedHz = spiSpeed
	}
	if flags.Changed("simulate") {
		cfg.Simulate = simulate
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	settings = cfg
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
