// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Encoderstat - RLS Absolute Encoder Frame Analyzer
//
// A CLI tool for reading RLS absolute encoders over SPI and decoding their
// position frames in human-readable format.

package main

import (
	"os"

	"github.com/Thermoquad/encoderstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
