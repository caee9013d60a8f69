// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bus

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// serialPort is the part of serial.Port used by the bridge
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetRTS(rts bool) error
	ResetInputBuffer() error
	Close() error
}

// SerialBridge drives an encoder through a USB-serial SPI bridge. The RTS
// line is the chip select (asserted = selected) and every byte written is
// clocked out on MOSI, with the MISO byte echoed back.
type SerialBridge struct {
	port serialPort
}

// OpenSerialBridge opens the bridge's serial port
func OpenSerialBridge(portName string, baudRate int, readTimeout time.Duration) (*SerialBridge, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %v", portName, err)
	}

	return &SerialBridge{port: port}, nil
}

// Init releases the chip select line
func (s *SerialBridge) Init() error {
	return s.port.SetRTS(false)
}

// Select asserts RTS, the bridge chip select
func (s *SerialBridge) Select() error {
	return s.port.SetRTS(true)
}

// Deselect releases RTS
func (s *SerialBridge) Deselect() error {
	return s.port.SetRTS(false)
}

// Begin discards bytes left over from a previous session
func (s *SerialBridge) Begin() error {
	return s.port.ResetInputBuffer()
}

// Transfer writes one byte and waits for the echoed MISO byte
func (s *SerialBridge) Transfer(out byte) (byte, error) {
	if _, err := s.port.Write([]byte{out}); err != nil {
		return 0, fmt.Errorf("serial write failed: %w", err)
	}

	buf := make([]byte, 1)
	n, err := s.port.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("serial read failed: %w", err)
	}
	// go.bug.st/serial returns 0 bytes without error on timeout
	if n == 0 {
		return 0, ErrTimeout
	}
	return buf[0], nil
}

// Close closes the serial port
func (s *SerialBridge) Close() error {
	return s.port.Close()
}
