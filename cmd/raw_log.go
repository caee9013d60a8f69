// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Thermoquad/encoderstat/internal/bus"
	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display raw frame log in human-readable format",
	Long: `Continuously read and display encoder frames as they arrive.

Each line shows the timestamp, the decoded angle, the raw position and the
frame bytes. Rejected frames are shown with their CRC and status state.

Supports SPI, serial bridge, WebSocket bridge and simulated connections.`,
	Args: cobra.NoArgs,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	enc, connInfo, closer, err := OpenEncoder(settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	fmt.Printf("Encoderstat - Raw Frame Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = pollReadings(ctx, enc, settings.Interval, func(r rls.Reading, err error) bool {
		switch {
		case err == nil || rls.IsInvalidAngle(err):
			fmt.Print(rls.FormatReading(r))
		case errors.Is(err, bus.ErrConnectionClosed):
			// The bridge is gone, nothing more will arrive
			log.Info().Msg("connection closed")
			return false
		default:
			log.Warn().Err(err).Msg("read error")
		}
		return true
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
