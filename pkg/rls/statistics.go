// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"errors"
	"fmt"
	"time"
)

// Statistics tracks frame statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	CRCErrors       uint64
	StaleFrames     uint64
	TransportErrors uint64
	AnomalousValues uint64
	PositionRange   uint64
	AngleJumps      uint64
	MultiturnJumps  uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a reading, the error returned while
// obtaining it and its validation errors
func (s *Statistics) Update(reading *Reading, readErr error, validationErrors []ValidationError) {
	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	if readErr != nil && !errors.Is(readErr, ErrInvalidAngle) {
		// Transport failure, no frame to classify
		s.TransportErrors++
		return
	}

	if reading != nil && !reading.Valid() {
		// A frame failing both checks counts as a CRC error only
		if !reading.CRCValid {
			s.CRCErrors++
		} else {
			s.StaleFrames++
		}
		return
	}

	if len(validationErrors) == 0 {
		s.ValidFrames++
		return
	}

	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyPositionRange:
			s.PositionRange++
			s.AnomalousValues++
		case AnomalyAngleJump:
			s.AngleJumps++
			s.AnomalousValues++
		case AnomalyMultiturnJump:
			s.MultiturnJumps++
			s.AnomalousValues++
		}
	}
}

// ErrorCount returns the number of frames that were rejected or anomalous
func (s *Statistics) ErrorCount() uint64 {
	return s.CRCErrors + s.StaleFrames + s.TransportErrors + s.AnomalousValues
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	percent := func(n uint64) float64 {
		if s.TotalFrames == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, percent(s.ValidFrames))

	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, percent(s.CRCErrors))
	}
	if s.StaleFrames > 0 {
		result += fmt.Sprintf("Stale Frames:    %8d (%.1f%%)\n", s.StaleFrames, percent(s.StaleFrames))
	}
	if s.TransportErrors > 0 {
		result += fmt.Sprintf("Bus Errors:      %8d (%.1f%%)\n", s.TransportErrors, percent(s.TransportErrors))
	}
	if s.AnomalousValues > 0 {
		result += fmt.Sprintf("Anomalous Values:%8d (%.1f%%)\n", s.AnomalousValues, percent(s.AnomalousValues))
		if s.PositionRange > 0 {
			result += fmt.Sprintf("  Out of Range:     %5d\n", s.PositionRange)
		}
		if s.AngleJumps > 0 {
			result += fmt.Sprintf("  Angle Jumps:      %5d\n", s.AngleJumps)
		}
		if s.MultiturnJumps > 0 {
			result += fmt.Sprintf("  Multiturn Jumps:  %5d\n", s.MultiturnJumps)
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
