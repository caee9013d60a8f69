// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a captured frame offline",
	Long: `Decode a 6-byte frame given as hex, without connecting to an encoder.

Bytes may be separated by spaces, colons or commas, and may carry a 0x
prefix. For example:

  encoderstat decode "12 34 56 7A 80 3C"
  encoderstat decode 0x1234567A803C`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	f, err := parseHexFrame(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, rls.FormatFrame(f))

	reading, err := rls.DecodeAngle(f, settings.Resolution)
	if err != nil {
		fmt.Fprintf(out, "  Angle:     invalid (%v)\n", err)
		return nil
	}
	fmt.Fprintf(out, "  Angle:     %s @ %d counts/rev\n", rls.FormatDegrees(reading.Degrees), settings.Resolution)
	return nil
}

// parseHexFrame accepts a frame written as hex with optional separators
func parseHexFrame(s string) (rls.Frame, error) {
	var b strings.Builder
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ':' || r == ',' || r == '-'
	}) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		if len(field)%2 == 1 {
			field = "0" + field
		}
		b.WriteString(field)
	}

	raw, err := hex.DecodeString(b.String())
	if err != nil {
		return rls.Frame{}, fmt.Errorf("invalid hex frame %q: %w", s, err)
	}
	return rls.ParseFrame(raw)
}
