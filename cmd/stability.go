// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/spf13/cobra"
)

var stabilityCmd = &cobra.Command{
	Use:   "stability",
	Short: "Test bus stability and frame read latency",
	Long: `Read frames back to back for a fixed duration and report how long each
transaction took and how many failed.

A heartbeat line is printed every second. Frames rejected by the CRC or
status check count as rejected, not as failures; a bus or bridge error
ends the test.

Exit codes:
  0 - Test completed without bus errors
  1 - Test failed
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runStability,
}

var stabilityDuration int

func init() {
	rootCmd.AddCommand(stabilityCmd)
	stabilityCmd.Flags().IntVar(&stabilityDuration, "duration", 30, "Test duration in seconds")
}

// latencyStats accumulates per-transaction durations
type latencyStats struct {
	count    int
	rejected int
	total    time.Duration
	min      time.Duration
	max      time.Duration
}

func (l *latencyStats) add(d time.Duration, valid bool) {
	if l.count == 0 || d < l.min {
		l.min = d
	}
	if d > l.max {
		l.max = d
	}
	l.count++
	l.total += d
	if !valid {
		l.rejected++
	}
}

func (l *latencyStats) average() time.Duration {
	if l.count == 0 {
		return 0
	}
	return l.total / time.Duration(l.count)
}

func (l *latencyStats) String() string {
	result := fmt.Sprintf("Frames read: %d\n", l.count)
	result += fmt.Sprintf("Rejected frames: %d\n", l.rejected)
	result += fmt.Sprintf("Latency: min %v, avg %v, max %v\n", l.min, l.average(), l.max)
	return result
}

func runStability(cmd *cobra.Command, args []string) error {
	enc, connInfo, closer, err := OpenEncoder(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Encoderstat - Bus Stability Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Duration: %d seconds\n\n", stabilityDuration)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(stabilityDuration)*time.Second)
	defer cancel()

	var stats latencyStats
	var readErr error
	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()
	deadline, _ := ctx.Deadline()

	start := time.Now()
	for ctx.Err() == nil {
		began := time.Now()
		_, err := enc.ReadAngle(ctx)
		if ctx.Err() != nil {
			break
		}
		if err != nil && !rls.IsInvalidAngle(err) {
			readErr = err
			break
		}
		stats.add(time.Since(began), err == nil)

		select {
		case <-heartbeat.C:
			fmt.Printf("[%s] %d frames, avg %v (%.0fs remaining)\n",
				time.Now().Format("15:04:05.000"), stats.count, stats.average(), time.Until(deadline).Seconds())
		default:
		}
	}
	closer.Close()

	fmt.Printf("\n--- Test Results ---\n")
	fmt.Printf("Duration: %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Print(stats.String())

	if readErr != nil {
		fmt.Printf("Bus error: %v\n", readErr)
		fmt.Printf("Result: FAILED (bus error)\n")
		os.Exit(1)
	}
	fmt.Printf("Result: PASSED (bus stable)\n")
	return nil
}
