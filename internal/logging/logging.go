// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package logging configures the zerolog logger used by the CLI
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "ENCODERSTAT_LOG_LEVEL"
	EnvLogNoColor = "ENCODERSTAT_LOG_NOCOLOR"
)

var configureOnce sync.Once

// Init configures the global logger once, writing to stderr so that frame
// output on stdout stays clean
func Init(app string) zerolog.Logger {
	configureOnce.Do(func() {
		log.Logger = New(app, os.Stderr)
	})
	return log.Logger
}

// New builds a console logger honoring the environment overrides
func New(app string, out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		output.NoColor = v
	}

	level := zerolog.InfoLevel
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	return zerolog.New(output).Level(level).With().Timestamp().Str("app", app).Logger()
}

// ParseLevel maps a level name to a zerolog level
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
