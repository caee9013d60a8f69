// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
)

// readingHandler receives every angle read. Returning false stops polling.
type readingHandler func(r rls.Reading, err error) bool

// pollReadings reads angles back to back, waiting interval between reads,
// until ctx is done or the handler asks to stop
func pollReadings(ctx context.Context, enc *rls.Encoder, interval time.Duration, handle readingHandler) error {
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := enc.ReadAngle(ctx)
		if ctx.Err() != nil {
			// Reads aborted by cancellation are not reported
			return ctx.Err()
		}
		if !handle(r, err) {
			return nil
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}
