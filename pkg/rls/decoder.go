// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import "time"

// Reading is the result of decoding one angle frame
type Reading struct {
	Frame         Frame
	Position      uint32  // 18-bit raw position, zero when rejected
	Degrees       float64 // zero when rejected
	Multiturn     uint16
	CRCValid      bool
	StatusValid   bool
	CalculatedCRC uint8
	ReceivedCRC   uint8
	Timestamp     time.Time
}

// Valid reports whether the reading passed both the checksum and status checks
func (r Reading) Valid() bool {
	return r.CRCValid && r.StatusValid
}

// DecodeAngle validates a frame and converts its position field to degrees.
// It is a pure function and safe to call concurrently on independent frames.
//
// A checksum mismatch and a clear status bit both yield ErrInvalidAngle.
// A zero resolution yields ErrNotInitialized.
func DecodeAngle(f Frame, resolution uint32) (Reading, error) {
	r := Reading{
		Frame:         f,
		Multiturn:     f.Multiturn(),
		CalculatedCRC: FrameChecksum(f),
		ReceivedCRC:   f.ReceivedCRC(),
		StatusValid:   f.StatusValid(),
		Timestamp:     time.Now(),
	}
	r.CRCValid = r.CalculatedCRC == r.ReceivedCRC

	if resolution == 0 {
		return r, ErrNotInitialized
	}
	if !r.Valid() {
		return r, ErrInvalidAngle
	}

	r.Position = f.RawPosition()
	r.Degrees = PositionToDegrees(r.Position, resolution)
	return r, nil
}

// PositionToDegrees scales a raw position by 360/resolution. The result is
// only below 360 when position < resolution. Resolution must be non-zero.
func PositionToDegrees(position, resolution uint32) float64 {
	return float64(position) * 360.0 / float64(resolution)
}

// DecodeMultiturn extracts the revolution counter from bytes 0-1.
//
// Multiturn frames are not checksum validated, matching the device command
// this frame belongs to. Callers wanting a check can use Frame.CRCValid.
func DecodeMultiturn(f Frame) uint16 {
	return f.Multiturn()
}

// Decoder holds the configured resolution of one encoder and the checksum
// outcome of the last angle frame. A Decoder belongs to a single owner and
// is not safe for concurrent use.
type Decoder struct {
	resolution uint32
	crcValid   bool
}

// NewDecoder creates a decoder with no resolution configured
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Init sets the counts per revolution. It may be called once.
func (d *Decoder) Init(resolution uint32) error {
	if resolution == 0 {
		return ErrInvalidResolution
	}
	if d.resolution != 0 {
		return ErrAlreadyInitialized
	}
	d.resolution = resolution
	return nil
}

// Resolution returns the configured counts per revolution (zero if unset)
func (d *Decoder) Resolution() uint32 {
	return d.resolution
}

// DecodeAngle decodes an angle frame and records its checksum outcome
func (d *Decoder) DecodeAngle(f Frame) (Reading, error) {
	if d.resolution == 0 {
		return Reading{Frame: f}, ErrNotInitialized
	}
	r, err := DecodeAngle(f, d.resolution)
	d.crcValid = r.CRCValid
	return r, err
}

// DecodeMultiturn decodes a multiturn frame. The validity flag is untouched.
func (d *Decoder) DecodeMultiturn(f Frame) uint16 {
	return DecodeMultiturn(f)
}

// LastCRCValid returns the checksum outcome of the most recent angle frame
func (d *Decoder) LastCRCValid() bool {
	return d.crcValid
}
