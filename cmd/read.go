// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the shaft angle and revolution counter once",
	Long: `Read one angle frame and one multiturn frame from the encoder.

The angle frame is checked against its CRC and status bit. The multiturn
counter is taken from a separate frame without a checksum check, so its
CRC state is printed alongside it.

Exit codes:
  0 - Valid angle read
  1 - Frame failed CRC or status check
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	enc, connInfo, closer, err := OpenEncoder(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	fmt.Printf("Encoderstat - Single Read\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Resolution: %d counts/rev\n\n", enc.Resolution())

	ctx := context.Background()
	reading, err := enc.ReadAngle(ctx)
	if err != nil && !rls.IsInvalidAngle(err) {
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		closer.Close()
		os.Exit(2)
	}

	turns, err := enc.ReadMultiturn(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		closer.Close()
		os.Exit(2)
	}

	fmt.Print(rls.FormatFrame(reading.Frame))
	fmt.Println()
	if !reading.Valid() {
		fmt.Printf("INVALID: angle frame rejected (CRC valid: %t, fresh: %t)\n", enc.CRCValid(), reading.StatusValid)
		closer.Close()
		os.Exit(1)
	}

	fmt.Printf("Angle:     %s\n", rls.FormatDegrees(reading.Degrees))
	fmt.Printf("Position:  %d / %d\n", reading.Position, enc.Resolution())
	fmt.Printf("Multiturn: %d\n", turns)
	return nil
}
