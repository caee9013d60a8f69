// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package bus

import (
	"errors"
	"math/rand"

	"github.com/Thermoquad/encoderstat/pkg/rls"
)

var errAlreadySelected = errors.New("chip already selected")

// SimulatorConfig describes the simulated shaft and its fault rates
type SimulatorConfig struct {
	Resolution   uint32
	Step         uint32  // counts advanced per frame
	CRCErrorRate float64 // probability of a corrupted frame
	StaleRate    float64 // probability of a frame without fresh status
	Seed         int64
}

// Simulator is an in-process encoder answering on a virtual SPI bus. It
// implements both ChipSelect and Transferer.
type Simulator struct {
	cfg SimulatorConfig
	rng *rand.Rand

	position uint32
	turns    uint16

	selected bool
	frame    rls.Frame
	index    int

	// Counters for inspection
	Selects   int
	Deselects int
	Transfers int
}

// NewSimulator creates a simulator starting at position zero
func NewSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.Resolution == 0 {
		cfg.Resolution = rls.Resolution18
	}
	return &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Init releases the simulated chip select
func (s *Simulator) Init() error {
	s.selected = false
	return nil
}

// Begin is a no-op, the virtual bus needs no setup
func (s *Simulator) Begin() error {
	return nil
}

// Select latches the next frame
func (s *Simulator) Select() error {
	if s.selected {
		return errAlreadySelected
	}
	s.selected = true
	s.Selects++
	s.frame = s.nextFrame()
	s.index = 0
	return nil
}

// Deselect ends the transaction
func (s *Simulator) Deselect() error {
	s.selected = false
	s.Deselects++
	return nil
}

// Transfer shifts out the next byte of the latched frame. Bytes clocked
// past the end of the frame read as zero.
func (s *Simulator) Transfer(out byte) (byte, error) {
	if !s.selected {
		return 0, ErrNotSelected
	}
	s.Transfers++
	if s.index >= rls.FrameSize {
		return 0x00, nil
	}
	b := s.frame[s.index]
	s.index++
	return b, nil
}

func (s *Simulator) nextFrame() rls.Frame {
	s.position += s.cfg.Step
	for s.position >= s.cfg.Resolution {
		s.position -= s.cfg.Resolution
		s.turns++
	}

	f := rls.EncodeFrame(rls.FrameFields{
		Multiturn: s.turns,
		Position:  s.position,
		Fresh:     s.rng.Float64() >= s.cfg.StaleRate,
	})

	if s.cfg.CRCErrorRate > 0 && s.rng.Float64() < s.cfg.CRCErrorRate {
		f[s.rng.Intn(rls.CRCInputSize)] ^= 1 << s.rng.Intn(8)
	}
	return f
}

// Position returns the current simulated position and revolution count
func (s *Simulator) Position() (uint32, uint16) {
	return s.position, s.turns
}
