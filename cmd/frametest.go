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

var (
	frameTestTimeout int
)

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid encoder frame",
	Long: `Read frames until one passes the CRC and status checks, or until timeout.

Rejected frames are counted and reported, but do not end the test.

Exit codes:
  0 - Valid frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for testing wiring to the encoder or connectivity to a bridge.`,
	Args: cobra.NoArgs,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	enc, connInfo, closer, err := OpenEncoder(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("Encoderstat - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for valid frame...\n\n")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(frameTestTimeout)*time.Second)
	defer cancel()

	code := waitForValidFrame(ctx, enc)
	closer.Close()
	os.Exit(code)
	return nil
}

// waitForValidFrame polls until a valid angle is read and returns the exit code
func waitForValidFrame(ctx context.Context, enc *rls.Encoder) int {
	rejected := 0
	var found *rls.Reading
	var readErr error

	// Ends with the deadline unless the handler stops it first
	pollReadings(ctx, enc, settings.Interval, func(r rls.Reading, err error) bool {
		switch {
		case err == nil:
			found = &r
			return false
		case rls.IsInvalidAngle(err):
			rejected++
			return true
		default:
			readErr = err
			return false
		}
	})

	if rejected > 0 {
		fmt.Printf("(rejected %d invalid frames)\n", rejected)
	}

	switch {
	case found != nil:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Frame: %s\n", found.Frame)
		fmt.Printf("  Angle: %s\n", rls.FormatDegrees(found.Degrees))
		fmt.Printf("  Multiturn: %d\n", found.Multiturn)
		fmt.Printf("  CRC: 0x%02X\n", found.ReceivedCRC)
		return 0
	case readErr != nil:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", readErr)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", frameTestTimeout)
		return 1
	}
}
