// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	good, _ := DecodeAngle(validFrame(0, 8), Resolution18)
	s.Update(&good, nil, nil)

	bad := validFrame(0, 8)
	bad[0] ^= 0x01
	crcReading, err := DecodeAngle(bad, Resolution18)
	s.Update(&crcReading, err, nil)

	staleReading, err := DecodeAngle(EncodeFrame(FrameFields{Position: 8}), Resolution18)
	s.Update(&staleReading, err, nil)

	s.Update(nil, fmt.Errorf("frame read failed: %w", errors.New("timeout")), nil)

	s.Update(&good, nil, []ValidationError{{Type: AnomalyAngleJump}})

	if s.TotalFrames != 5 {
		t.Errorf("TotalFrames = %d, want 5", s.TotalFrames)
	}
	if s.ValidFrames != 1 {
		t.Errorf("ValidFrames = %d, want 1", s.ValidFrames)
	}
	if s.CRCErrors != 1 {
		t.Errorf("CRCErrors = %d, want 1", s.CRCErrors)
	}
	if s.StaleFrames != 1 {
		t.Errorf("StaleFrames = %d, want 1", s.StaleFrames)
	}
	if s.TransportErrors != 1 {
		t.Errorf("TransportErrors = %d, want 1", s.TransportErrors)
	}
	if s.AngleJumps != 1 || s.AnomalousValues != 1 {
		t.Errorf("AngleJumps = %d, AnomalousValues = %d, want 1, 1", s.AngleJumps, s.AnomalousValues)
	}
	if s.ErrorCount() != 4 {
		t.Errorf("ErrorCount = %d, want 4", s.ErrorCount())
	}

	summary := s.String()
	for _, want := range []string{"Total Frames:", "CRC Errors:", "Stale Frames:", "Bus Errors:", "Angle Jumps:"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	s.Reset()
	if s.TotalFrames != 0 || s.ErrorCount() != 0 {
		t.Error("Reset should clear counters")
	}
}
