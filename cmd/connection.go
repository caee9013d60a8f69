// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/encoderstat/internal/bus"
	"github.com/Thermoquad/encoderstat/internal/config"
	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Simulated shaft: half a degree per frame with occasional faults
const (
	simStepDivisor  = 720
	simCRCErrorRate = 0.01
	simStaleRate    = 0.01
	passwordEnvVar  = "ENCODERSTAT_PASSWORD"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv(passwordEnvVar); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal, read a plain line instead
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenTransport opens the frame transport selected by the settings. The
// precedence is WebSocket, serial bridge, local SPI, then simulator.
func OpenTransport(cfg config.Config) (rls.Transport, string, io.Closer, error) {
	switch {
	case cfg.WebSocket.URL != "":
		password := ""
		if cfg.WebSocket.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", nil, err
			}
		}

		bridge, err := bus.OpenWebSocketBridge(cfg.WebSocket.URL, cfg.WebSocket.Username, password, cfg.WebSocket.NoSSLVerify)
		if err != nil {
			return nil, "", nil, err
		}
		return bridge, fmt.Sprintf("WebSocket: %s", cfg.WebSocket.URL), bridge, nil

	case cfg.Serial.Port != "":
		bridge, err := bus.OpenSerialBridge(cfg.Serial.Port, cfg.Serial.Baud, cfg.Serial.ReadTimeout)
		if err != nil {
			return nil, "", nil, err
		}
		info := fmt.Sprintf("Serial: %s @ %d baud", cfg.Serial.Port, cfg.Serial.Baud)
		return bus.NewSPI(bridge, bridge, cfg.SPI.CSSetup), info, bridge, nil

	case cfg.SPI.Device != "":
		spi, port, err := bus.OpenPeriph(cfg.SPI.Device, cfg.SPI.CSPin, cfg.SPI.SpeedHz, cfg.SPI.Mode, cfg.SPI.CSSetup)
		if err != nil {
			return nil, "", nil, err
		}
		info := fmt.Sprintf("SPI: %s (CS %s) @ %d Hz", cfg.SPI.Device, cfg.SPI.CSPin, cfg.SPI.SpeedHz)
		return spi, info, port, nil

	case cfg.Simulate:
		sim := bus.NewSimulator(bus.SimulatorConfig{
			Resolution:   cfg.Resolution,
			Step:         cfg.Resolution / simStepDivisor,
			CRCErrorRate: simCRCErrorRate,
			StaleRate:    simStaleRate,
			Seed:         time.Now().UnixNano(),
		})
		return bus.NewSPI(sim, sim, cfg.SPI.CSSetup), "Simulator", nopCloser{}, nil
	}

	return nil, "", nil, fmt.Errorf("one of --spi, --port, --url or --simulate must be specified")
}

// OpenEncoder opens the transport and runs the encoder initialization
func OpenEncoder(cfg config.Config) (*rls.Encoder, string, io.Closer, error) {
	transport, info, closer, err := OpenTransport(cfg)
	if err != nil {
		return nil, "", nil, err
	}

	enc := rls.NewEncoder(transport)
	if err := enc.Begin(cfg.Resolution); err != nil {
		closer.Close()
		return nil, "", nil, err
	}

	log.Debug().
		Str("connection", info).
		Uint32("resolution", cfg.Resolution).
		Msg("encoder initialized")
	return enc, info, closer, nil
}
