// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze corrupted frames and anomalous readings",
	Long: `Track frame errors and anomalous readings with statistics.

Each frame is validated and the following are detected:
  - CRC mismatches and frames without a fresh status bit
  - Positions at or above the configured resolution
  - Angle jumps larger than --max-jump between consecutive reads
  - Multiturn counter changes of more than one revolution
  - Bus and bridge errors

By default, only errors are displayed. Use --show-all to display valid frames too.

Frames are validated in real-time, with errors highlighted immediately and
periodic statistics summaries displayed at configurable intervals.`,
	Args: cobra.NoArgs,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all frames (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

// frameEvent is one angle read with its validation outcome
type frameEvent struct {
	reading          rls.Reading
	err              error
	validationErrors []rls.ValidationError
}

// transportFailed reports whether the read never produced a frame
func (e frameEvent) transportFailed() bool {
	return e.err != nil && !rls.IsInvalidAngle(e.err)
}

// newFrameEvent runs the validator over a read result. Transport failures
// carry no frame and skip validation.
func newFrameEvent(v *rls.Validator, r rls.Reading, err error) frameEvent {
	ev := frameEvent{reading: r, err: err}
	if !ev.transportFailed() {
		ev.validationErrors = v.Validate(r)
	}
	return ev
}

// record adds the event to the statistics
func (e frameEvent) record(stats *rls.Statistics) {
	if e.transportFailed() {
		stats.Update(nil, e.err, nil)
		return
	}
	r := e.reading
	stats.Update(&r, e.err, e.validationErrors)
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	enc, connInfo, closer, err := OpenEncoder(settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if useTUI {
		return runTUIMode(ctx, enc, connInfo)
	}
	return runTextMode(ctx, enc, connInfo)
}

// printTransportError prints a bus error in highlighted format
func printTransportError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mBUS ERROR:\033[0m %v\n", timestamp, err)
	fmt.Printf("  >>> READ FAILED <<<\n\n")
}

// printValidationErrors prints validation errors for a reading
func printValidationErrors(r rls.Reading, errs []rls.ValidationError) {
	timestamp := r.Timestamp.Format("15:04:05.000")

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m frame [%s]\n", timestamp, r.Frame)
	if r.CRCValid {
		fmt.Printf("  CRC: \033[1;32mOK\033[0m\n")
	} else {
		fmt.Printf("  CRC: \033[1;31m0x%02X (calculated 0x%02X)\033[0m\n", r.ReceivedCRC, r.CalculatedCRC)
	}

	for i, err := range errs {
		switch err.Type {
		case rls.AnomalyCRCError, rls.AnomalyStale:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)

		case rls.AnomalyPositionRange:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)

		case rls.AnomalyAngleJump:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
			if from, ok := err.Details["from"].(float64); ok {
				if to, ok := err.Details["to"].(float64); ok {
					fmt.Printf("    %s -> %s\n", rls.FormatDegrees(from), rls.FormatDegrees(to))
				}
			}

		case rls.AnomalyMultiturnJump:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
			if from, ok := err.Details["from"].(uint16); ok {
				if to, ok := err.Details["to"].(uint16); ok {
					fmt.Printf("    turns=%d -> %d\n", from, to)
				}
			}

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, err.Message)
		}
	}

	if r.Valid() {
		fmt.Printf("  >>> READING SUSPECT <<<\n\n")
	} else {
		fmt.Printf("  >>> FRAME REJECTED <<<\n\n")
	}
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(ctx context.Context, enc *rls.Encoder, connInfo string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	validator := rls.NewValidator(settings.Resolution, settings.MaxJumpDegrees)
	m := initialModel(connInfo, settings.Resolution, statsInterval, showAll)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	// Encoder reader goroutine
	go func() {
		pollReadings(ctx, enc, settings.Interval, func(r rls.Reading, err error) bool {
			p.Send(readingMsg(newFrameEvent(validator, r, err)))
			return true
		})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(ctx context.Context, enc *rls.Encoder, connInfo string) error {
	fmt.Printf("Encoderstat - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Resolution: %d counts/rev, max jump %.1f°\n", settings.Resolution, settings.MaxJumpDegrees)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All frames\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	validator := rls.NewValidator(settings.Resolution, settings.MaxJumpDegrees)
	stats := rls.NewStatistics()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	err := pollReadings(ctx, enc, settings.Interval, func(r rls.Reading, err error) bool {
		ev := newFrameEvent(validator, r, err)
		ev.record(stats)

		switch {
		case ev.transportFailed():
			log.Debug().Err(ev.err).Msg("read failed")
			printTransportError(ev.err)
		case len(ev.validationErrors) > 0:
			printValidationErrors(ev.reading, ev.validationErrors)
		case showAll:
			fmt.Print(rls.FormatReading(ev.reading))
		}

		select {
		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		default:
		}
		return true
	})

	// Final summary on exit
	fmt.Println()
	fmt.Print(stats.String())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
