// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import (
	"fmt"
	"math"
)

// AnomalyType represents different types of frame anomalies
type AnomalyType int

const (
	AnomalyCRCError AnomalyType = iota
	AnomalyStale
	AnomalyPositionRange
	AnomalyAngleJump
	AnomalyMultiturnJump
	AnomalyTransportError
)

// DefaultMaxJumpDegrees is the largest angle change between two consecutive
// readings accepted without flagging an anomaly
const DefaultMaxJumpDegrees = 90.0

// ValidationError represents a frame validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// Validator checks readings against each other and against the configured
// resolution. It remembers the last accepted reading.
type Validator struct {
	resolution     uint32
	maxJumpDegrees float64

	last *Reading
}

// NewValidator creates a validator for a device with the given resolution.
// A non-positive maxJumpDegrees selects DefaultMaxJumpDegrees.
func NewValidator(resolution uint32, maxJumpDegrees float64) *Validator {
	if maxJumpDegrees <= 0 {
		maxJumpDegrees = DefaultMaxJumpDegrees
	}
	return &Validator{
		resolution:     resolution,
		maxJumpDegrees: maxJumpDegrees,
	}
}

// Reset forgets the previous reading
func (v *Validator) Reset() {
	v.last = nil
}

// Validate returns the anomalies found in r (empty if r is valid).
// Only readings that pass the frame checks become the new reference.
func (v *Validator) Validate(r Reading) []ValidationError {
	errors := []ValidationError{}

	if !r.CRCValid {
		errors = append(errors, ValidationError{
			Type:    AnomalyCRCError,
			Message: fmt.Sprintf("CRC mismatch: expected 0x%02X, got 0x%02X", r.CalculatedCRC, r.ReceivedCRC),
			Details: map[string]interface{}{"calculated": r.CalculatedCRC, "received": r.ReceivedCRC},
		})
	}
	if !r.StatusValid {
		errors = append(errors, ValidationError{
			Type:    AnomalyStale,
			Message: "Status bit clear (no fresh measurement)",
			Details: map[string]interface{}{"status_byte": r.Frame[StatusIndex]},
		})
	}
	if len(errors) > 0 {
		return errors
	}

	if v.resolution > 0 && r.Position >= v.resolution {
		errors = append(errors, ValidationError{
			Type:    AnomalyPositionRange,
			Message: fmt.Sprintf("Position %d exceeds resolution %d", r.Position, v.resolution),
			Details: map[string]interface{}{"position": r.Position, "resolution": v.resolution},
		})
	}

	if v.last != nil {
		delta := AngleDelta(v.last.Degrees, r.Degrees)
		if math.Abs(delta) > v.maxJumpDegrees {
			errors = append(errors, ValidationError{
				Type:    AnomalyAngleJump,
				Message: fmt.Sprintf("Angle jump %.2f° (max %.2f°)", delta, v.maxJumpDegrees),
				Details: map[string]interface{}{"from": v.last.Degrees, "to": r.Degrees, "delta": delta},
			})
		}

		turns := int16(r.Multiturn - v.last.Multiturn)
		if turns > 1 || turns < -1 {
			errors = append(errors, ValidationError{
				Type:    AnomalyMultiturnJump,
				Message: fmt.Sprintf("Multiturn changed by %d revolutions", turns),
				Details: map[string]interface{}{"from": v.last.Multiturn, "to": r.Multiturn},
			})
		}
	}

	last := r
	v.last = &last

	return errors
}

// AngleDelta returns the signed shortest rotation from a to b in degrees,
// in the range (-180, 180]
func AngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360.0)
	if d > 180.0 {
		d -= 360.0
	} else if d <= -180.0 {
		d += 360.0
	}
	return d
}
