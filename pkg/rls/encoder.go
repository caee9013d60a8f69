// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

// FrameFields describes the content of a frame to synthesize
type FrameFields struct {
	Multiturn uint16
	Position  uint32 // 18-bit position, higher bits are dropped
	LowBits   uint8  // six bits below the position field
	Fresh     bool   // sets the status bit, which also forces position bit 3
}

// EncodeFrame builds a frame the way the device does, including the
// inverted checksum in byte 5. Used by the simulator and in tests.
func EncodeFrame(fields FrameFields) Frame {
	word := (fields.Position&PositionMask)<<PositionShift | uint32(fields.LowBits&LowBitsMask)

	var f Frame
	f[0] = byte(fields.Multiturn >> 8)
	f[1] = byte(fields.Multiturn)
	f[2] = byte(word >> 16)
	f[3] = byte(word >> 8)
	f[4] = byte(word)

	if fields.Fresh {
		f[StatusIndex] |= StatusBitValid
	} else {
		f[StatusIndex] &^= StatusBitValid
	}

	return Seal(f)
}

// Seal recomputes byte 5 of a frame from bytes 0-4
func Seal(f Frame) Frame {
	f[CRCIndex] = FrameChecksum(f)
	return f
}
