// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bus

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// PeriphPin is a GPIO chip select line
type PeriphPin struct {
	pin gpio.PinOut
}

// Init drives the line high, leaving the chip deselected
func (p *PeriphPin) Init() error {
	return p.pin.Out(gpio.High)
}

// Select drives the line low
func (p *PeriphPin) Select() error {
	return p.pin.Out(gpio.Low)
}

// Deselect drives the line high
func (p *PeriphPin) Deselect() error {
	return p.pin.Out(gpio.High)
}

// PeriphBus is a spidev port clocking one byte per transaction
type PeriphBus struct {
	port  spi.PortCloser
	conn  spi.Conn
	speed physic.Frequency
	mode  spi.Mode
}

// Begin connects to the port with the configured clock and mode
func (b *PeriphBus) Begin() error {
	conn, err := b.port.Connect(b.speed, b.mode, 8)
	if err != nil {
		return fmt.Errorf("spi connect failed: %w", err)
	}
	b.conn = conn
	return nil
}

// Transfer clocks one byte out and returns the byte clocked in
func (b *PeriphBus) Transfer(out byte) (byte, error) {
	if b.conn == nil {
		return 0, fmt.Errorf("spi bus not started")
	}
	w := []byte{out}
	r := make([]byte, 1)
	if err := b.conn.Tx(w, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

// Close releases the spidev port
func (b *PeriphBus) Close() error {
	return b.port.Close()
}

// OpenPeriph opens a spidev port (e.g. "SPI0.0", "/dev/spidev0.0") and a GPIO
// chip select (e.g. "GPIO8"). The hardware chip select is left unused. The
// returned bus must be closed by the caller.
func OpenPeriph(device, csPin string, speedHz int64, mode int, setup time.Duration) (*SPI, *PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init failed: %w", err)
	}

	pin := gpioreg.ByName(csPin)
	if pin == nil {
		return nil, nil, fmt.Errorf("unknown GPIO pin %s", csPin)
	}

	port, err := spireg.Open(device)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open SPI port %s: %v", device, err)
	}

	bus := &PeriphBus{
		port:  port,
		speed: physic.Frequency(speedHz) * physic.Hertz,
		mode:  spi.Mode(mode) | spi.NoCS,
	}
	return NewSPI(&PeriphPin{pin: pin}, bus, setup), bus, nil
}
