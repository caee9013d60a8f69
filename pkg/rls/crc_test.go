// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import "testing"

// generateTable builds the CRC-8 table bit by bit from the polynomial
func generateTable(poly uint8) [256]uint8 {
	var table [256]uint8
	for i := 0; i < 256; i++ {
		crc := uint8(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

func TestCRCTable_MatchesPolynomial(t *testing.T) {
	generated := generateTable(CRCPolynomial)
	for i := range crcTable {
		if crcTable[i] != generated[i] {
			t.Fatalf("table[0x%02X] = 0x%02X, generated 0x%02X", i, crcTable[i], generated[i])
		}
	}
}

func TestChecksum_Zero(t *testing.T) {
	if crc := Checksum(0); crc != 0 {
		t.Errorf("Checksum(0) should be 0, got 0x%02X", crc)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		input    uint64
		expected uint8
	}{
		{"low byte 0x01", 0x01, 0x97},
		{"low byte 0x02", 0x02, 0xB9},
		{"second byte 0x01", 0x0100, 0xD3},
		{"top byte feeds the table like any other", 0x01 << 56, Checksum(0x97 << 48)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if crc := Checksum(tt.input); crc != tt.expected {
				t.Errorf("Checksum(0x%X) = 0x%02X, want 0x%02X", tt.input, crc, tt.expected)
			}
		})
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	input := uint64(0x12345678AB)
	if Checksum(input) != Checksum(input) {
		t.Error("Checksum should be deterministic")
	}
}

// TestChecksum_SingleBitSensitivity flips every bit of sampled inputs.
// CRC-8/0x97 detects every single-bit error, so each flip must change the result.
func TestChecksum_SingleBitSensitivity(t *testing.T) {
	samples := []uint64{0, 1, 0xFF, 0x12345678AB, 0xFFFFFFFFFF, 0xDEADBEEFCAFEF00D}
	for _, input := range samples {
		base := Checksum(input)
		for bit := 0; bit < 64; bit++ {
			if Checksum(input^(1<<bit)) == base {
				t.Errorf("flipping bit %d of 0x%X did not change the checksum", bit, input)
			}
		}
	}
}

func TestChecksum_LeadingZeroBytes(t *testing.T) {
	// The upper three bytes are zero for frames; feeding them must match
	// running the table over the five data bytes alone
	data := []byte{0x12, 0x34, 0x56, 0x78, 0x9A}
	crc := uint8(0)
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	if got := Checksum(0x123456789A); got != crc {
		t.Errorf("Checksum = 0x%02X, byte-wise = 0x%02X", got, crc)
	}
}

func TestFrameChecksum_Inverted(t *testing.T) {
	f := Frame{0x00, 0x00, 0x00, 0x00, 0x01, 0x00}
	if got := FrameChecksum(f); got != ^uint8(0x97) {
		t.Errorf("FrameChecksum = 0x%02X, want 0x%02X", got, ^uint8(0x97))
	}
}
