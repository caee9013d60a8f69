// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package rls decodes the SPI frames produced by RLS absolute rotary encoders.
//
// A frame is six bytes: a 16-bit multiturn counter, a 24-bit word holding the
// 18-bit position and six status bits, and an inverted CRC-8 (polynomial 0x97)
// over the first five bytes. This package validates frames and converts the
// position field into degrees. It never performs I/O; see Transport.
package rls

// Frame layout
const (
	FrameSize    = 6
	CRCInputSize = 5
	CRCIndex     = 5
	StatusIndex  = 3
)

// CRC-8 configuration
const (
	CRCPolynomial = 0x97
	crcInitial    = 0x00
)

// Status bit in byte 3. It shares the byte with the middle of the position
// word, so a fresh frame always has position bit 3 set.
const (
	StatusBitValid = 0x02
)

// Position field
const (
	PositionShift = 6
	PositionBits  = 18
	PositionMask  = 1<<PositionBits - 1
	LowBitsMask   = 1<<PositionShift - 1
)

// Counts per revolution for the supported device variants
const (
	Resolution17 = 131072
	Resolution18 = 262144
	Resolution19 = 524288
)

// Bridge message types (WebSocket bridge, CBOR encoded)
const (
	MsgTransferRequest  = 0x10
	MsgTransferResponse = 0x11
	MsgError            = 0xE0
)

// Bridge error codes carried in MsgError
const (
	BridgeErrUnknown   = 0x00
	BridgeErrBusy      = 0x01
	BridgeErrBus       = 0x02
	BridgeErrBadLength = 0x03
)
