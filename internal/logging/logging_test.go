// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		raw    string
		level  zerolog.Level
		parsed bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, true},
		{" WARN ", zerolog.WarnLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"bogus", zerolog.InfoLevel, false},
	}
	for _, tc := range testCases {
		level, ok := ParseLevel(tc.raw)
		require.Equal(t, tc.parsed, ok, tc.raw)
		require.Equal(t, tc.level, level, tc.raw)
	}
}

func TestNew_LevelFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogNoColor, "true")

	var buf bytes.Buffer
	logger := New("test", &buf)

	logger.Info().Msg("hidden")
	require.Empty(t, buf.String())

	logger.Error().Msg("shown")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "app=test")
}
