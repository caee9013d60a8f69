// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"math"
	"testing"
)

func mustDecode(t *testing.T, f Frame, resolution uint32) Reading {
	t.Helper()
	r, err := DecodeAngle(f, resolution)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return r
}

func hasAnomaly(errors []ValidationError, anomaly AnomalyType) bool {
	for _, err := range errors {
		if err.Type == anomaly {
			return true
		}
	}
	return false
}

func TestValidator_ValidSequence(t *testing.T) {
	v := NewValidator(Resolution18, 0)
	for i, pos := range []uint32{8, 1000, 5000, 9000} {
		r := mustDecode(t, validFrame(0, pos), Resolution18)
		if errs := v.Validate(r); len(errs) != 0 {
			t.Errorf("reading %d: unexpected anomalies %v", i, errs)
		}
	}
}

func TestValidator_RejectedFrames(t *testing.T) {
	v := NewValidator(Resolution18, 0)

	bad := validFrame(0, 8)
	bad[4] ^= 0x80
	r, _ := DecodeAngle(bad, Resolution18)
	errs := v.Validate(r)
	if !hasAnomaly(errs, AnomalyCRCError) {
		t.Errorf("expected CRC anomaly, got %v", errs)
	}

	stale := EncodeFrame(FrameFields{Position: 8})
	r, _ = DecodeAngle(stale, Resolution18)
	errs = v.Validate(r)
	if !hasAnomaly(errs, AnomalyStale) || hasAnomaly(errs, AnomalyCRCError) {
		t.Errorf("expected only a stale anomaly, got %v", errs)
	}
}

func TestValidator_PositionRange(t *testing.T) {
	// 18-bit field on a 17-bit device
	v := NewValidator(Resolution17, 0)
	r := mustDecode(t, validFrame(0, Resolution17+8), Resolution17)
	if errs := v.Validate(r); !hasAnomaly(errs, AnomalyPositionRange) {
		t.Errorf("expected position range anomaly, got %v", errs)
	}
}

func TestValidator_AngleJump(t *testing.T) {
	v := NewValidator(Resolution18, 45)
	v.Validate(mustDecode(t, validFrame(0, 8), Resolution18))

	// Half a turn later
	r := mustDecode(t, validFrame(0, Resolution18/2+8), Resolution18)
	if errs := v.Validate(r); !hasAnomaly(errs, AnomalyAngleJump) {
		t.Errorf("expected angle jump anomaly, got %v", errs)
	}
}

func TestValidator_AngleWrapIsNotAJump(t *testing.T) {
	v := NewValidator(Resolution18, 10)
	v.Validate(mustDecode(t, validFrame(0, Resolution18-1), Resolution18))

	r := mustDecode(t, validFrame(1, 8), Resolution18)
	if errs := v.Validate(r); len(errs) != 0 {
		t.Errorf("wrap through zero flagged: %v", errs)
	}
}

func TestValidator_MultiturnJump(t *testing.T) {
	v := NewValidator(Resolution18, 0)
	v.Validate(mustDecode(t, validFrame(10, 8), Resolution18))

	r := mustDecode(t, validFrame(13, 8), Resolution18)
	if errs := v.Validate(r); !hasAnomaly(errs, AnomalyMultiturnJump) {
		t.Errorf("expected multiturn anomaly, got %v", errs)
	}

	// Counter rollover by one is fine
	v.Reset()
	v.Validate(mustDecode(t, validFrame(0xFFFF, 8), Resolution18))
	r = mustDecode(t, validFrame(0, 8), Resolution18)
	if errs := v.Validate(r); len(errs) != 0 {
		t.Errorf("rollover flagged: %v", errs)
	}
}

func TestAngleDelta(t *testing.T) {
	tests := []struct {
		a, b, expected float64
	}{
		{0, 10, 10},
		{10, 0, -10},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{90, 270, 180},
	}
	for _, tt := range tests {
		if got := AngleDelta(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("AngleDelta(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}
