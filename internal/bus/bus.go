// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package bus provides the transports that clock frames out of an encoder:
// a local spidev bus, a USB-serial SPI bridge, a remote WebSocket bridge and
// an in-process simulator.
package bus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
)

// DefaultCSSetup is the delay between selecting the device and the first clock
const DefaultCSSetup = time.Microsecond

var (
	ErrNotSelected = errors.New("transfer without chip select")
	ErrTimeout     = errors.New("bus read timeout")
)

// ChipSelect drives the device select line
type ChipSelect interface {
	// Init configures the line as an output, idle high
	Init() error
	// Select drives the line low
	Select() error
	// Deselect drives the line high
	Deselect() error
}

// Transferer exchanges single bytes with the device
type Transferer interface {
	Begin() error
	Transfer(b byte) (byte, error)
}

// SPI reads frames by bracketing six single-byte transfers with chip select
type SPI struct {
	cs    ChipSelect
	bus   Transferer
	setup time.Duration
}

// NewSPI creates a frame transport. A zero setup delay disables the wait
// after select.
func NewSPI(cs ChipSelect, bus Transferer, setup time.Duration) *SPI {
	return &SPI{
		cs:    cs,
		bus:   bus,
		setup: setup,
	}
}

// Init sets chip select idle high and starts the bus
func (s *SPI) Init() error {
	if err := s.cs.Init(); err != nil {
		return fmt.Errorf("chip select init failed: %w", err)
	}
	if err := s.cs.Deselect(); err != nil {
		return fmt.Errorf("chip select idle failed: %w", err)
	}
	if err := s.bus.Begin(); err != nil {
		return fmt.Errorf("bus begin failed: %w", err)
	}
	return nil
}

// ReadFrame performs one transaction. Chip select is released even when a
// transfer fails.
func (s *SPI) ReadFrame(ctx context.Context) (f rls.Frame, err error) {
	if err := ctx.Err(); err != nil {
		return f, err
	}

	if err := s.cs.Select(); err != nil {
		return f, fmt.Errorf("chip select failed: %w", err)
	}
	defer func() {
		if deselectErr := s.cs.Deselect(); deselectErr != nil && err == nil {
			err = fmt.Errorf("chip deselect failed: %w", deselectErr)
		}
	}()

	if s.setup > 0 {
		time.Sleep(s.setup)
	}

	for i := range f {
		b, err := s.bus.Transfer(0x00)
		if err != nil {
			return rls.Frame{}, fmt.Errorf("transfer %d of %d failed: %w", i+1, rls.FrameSize, err)
		}
		f[i] = b
	}
	return f, nil
}
