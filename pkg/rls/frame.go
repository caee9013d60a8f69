// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import "fmt"

// Frame is one 6-byte SPI transaction as received from the encoder
type Frame [FrameSize]byte

// ParseFrame copies a received byte slice into a Frame
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameSize {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameLength, len(b), FrameSize)
	}
	copy(f[:], b)
	return f, nil
}

// CRCInput packs bytes 0-4 into the low 40 bits of a 64-bit word,
// byte 0 in bits 32-39
func (f Frame) CRCInput() uint64 {
	return uint64(f[0])<<32 |
		uint64(f[1])<<24 |
		uint64(f[2])<<16 |
		uint64(f[3])<<8 |
		uint64(f[4])
}

// ReceivedCRC returns the checksum byte sent by the device
func (f Frame) ReceivedCRC() uint8 {
	return f[CRCIndex]
}

// CRCValid reports whether byte 5 matches the inverted CRC of bytes 0-4
func (f Frame) CRCValid() bool {
	return FrameChecksum(f) == f.ReceivedCRC()
}

// StatusValid reports whether the device flagged the position as fresh
func (f Frame) StatusValid() bool {
	return f[StatusIndex]&StatusBitValid != 0
}

// LowBits returns the six bits discarded below the position field
func (f Frame) LowBits() uint8 {
	return f[4] & LowBitsMask
}

// RawPosition extracts the 18-bit position from bytes 2-4
func (f Frame) RawPosition() uint32 {
	word := uint32(f[2])<<16 | uint32(f[3])<<8 | uint32(f[4])
	return word >> PositionShift
}

// Multiturn returns the 16-bit revolution counter from bytes 0-1
func (f Frame) Multiturn() uint16 {
	return uint16(f[0])<<8 | uint16(f[1])
}

// String returns the frame as space separated hex bytes
func (f Frame) String() string {
	return fmt.Sprintf("%02X %02X %02X %02X %02X %02X", f[0], f[1], f[2], f[3], f[4], f[5])
}
