// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package rls

import "errors"

var (
	// ErrInvalidAngle is returned when a frame fails its checksum or the
	// device did not flag a fresh measurement. Both cases are reported the
	// same way; Reading carries the details.
	ErrInvalidAngle = errors.New("invalid angle frame")

	// ErrNotInitialized is returned when an angle is decoded before a
	// resolution was configured
	ErrNotInitialized = errors.New("decoder resolution not initialized")

	ErrInvalidResolution  = errors.New("resolution must be greater than zero")
	ErrAlreadyInitialized = errors.New("decoder resolution already set")
	ErrFrameLength        = errors.New("invalid frame length")
)

// IsInvalidAngle returns true if err reports a rejected angle frame
func IsInvalidAngle(err error) bool {
	return errors.Is(err, ErrInvalidAngle)
}
