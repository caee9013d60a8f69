// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"context"
	"fmt"
)

// Transport performs one 6-byte read transaction with the encoder
type Transport interface {
	ReadFrame(ctx context.Context) (Frame, error)
}

// Initializer is implemented by transports that need setup before the first
// transaction (chip select idle high, bus begin)
type Initializer interface {
	Init() error
}

// Encoder couples a transport with a decoder for one physical device.
// It is owned by a single caller; concurrent callers sharing a device must
// serialize access themselves.
type Encoder struct {
	transport Transport
	decoder   *Decoder
}

// NewEncoder creates an encoder reading frames from t
func NewEncoder(t Transport) *Encoder {
	return &Encoder{
		transport: t,
		decoder:   NewDecoder(),
	}
}

// Begin configures the resolution and initializes the transport.
// It must succeed once before any read. A failed transport init leaves the
// encoder unconfigured so Begin can be retried.
func (e *Encoder) Begin(resolution uint32) error {
	if err := e.decoder.Init(resolution); err != nil {
		return err
	}
	if init, ok := e.transport.(Initializer); ok {
		if err := init.Init(); err != nil {
			e.decoder = NewDecoder()
			return fmt.Errorf("transport init failed: %w", err)
		}
	}
	return nil
}

// ReadAngle reads one frame and decodes it as an angle
func (e *Encoder) ReadAngle(ctx context.Context) (Reading, error) {
	f, err := e.transport.ReadFrame(ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("frame read failed: %w", err)
	}
	return e.decoder.DecodeAngle(f)
}

// ReadMultiturn reads one frame and returns its revolution counter
func (e *Encoder) ReadMultiturn(ctx context.Context) (uint16, error) {
	f, err := e.transport.ReadFrame(ctx)
	if err != nil {
		return 0, fmt.Errorf("frame read failed: %w", err)
	}
	return e.decoder.DecodeMultiturn(f), nil
}

// CRCValid returns the checksum outcome of the last angle read
func (e *Encoder) CRCValid() bool {
	return e.decoder.LastCRCValid()
}

// Resolution returns the configured counts per revolution
func (e *Encoder) Resolution() uint32 {
	return e.decoder.Resolution()
}
