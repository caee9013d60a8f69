// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"testing"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func sendReading(t *testing.T, m model, ev frameEvent) model {
	t.Helper()
	next, _ := m.Update(readingMsg(ev))
	return next.(model)
}

func TestModel_TracksReadings(t *testing.T) {
	m := initialModel("Simulator", rls.Resolution18, 10, false)
	validator := rls.NewValidator(rls.Resolution18, rls.DefaultMaxJumpDegrees)

	require.Contains(t, m.View(), "Waiting for a valid frame")

	r, err := rls.DecodeAngle(rls.EncodeFrame(rls.FrameFields{Multiturn: 7, Position: 65536, Fresh: true}), rls.Resolution18)
	require.NoError(t, err)
	m = sendReading(t, m, newFrameEvent(validator, r, err))

	require.NotNil(t, m.lastValid)
	require.Equal(t, uint16(7), m.lastValid.Multiturn)
	require.Equal(t, uint64(1), m.stats.ValidFrames)
	require.Empty(t, m.errorLog)
	require.Contains(t, m.View(), "ENCODERSTAT - ERROR DETECTION")
	require.NotContains(t, m.View(), "Waiting for a valid frame")

	m = sendReading(t, m, newFrameEvent(validator, rls.Reading{}, errors.New("bus fault")))
	require.Len(t, m.errorLog, 1)
	require.True(t, m.errorLog[0].isError)
	require.Contains(t, m.errorLog[0].message, "bus fault")
	require.Equal(t, uint64(1), m.stats.TransportErrors)
	// A failed read keeps the last good position
	require.Equal(t, uint16(7), m.lastValid.Multiturn)
}

func TestModel_ShowAllLogsValidFrames(t *testing.T) {
	m := initialModel("Simulator", rls.Resolution18, 10, true)
	validator := rls.NewValidator(rls.Resolution18, rls.DefaultMaxJumpDegrees)

	r, err := rls.DecodeAngle(rls.EncodeFrame(rls.FrameFields{Position: 1000, Fresh: true}), rls.Resolution18)
	require.NoError(t, err)
	m = sendReading(t, m, newFrameEvent(validator, r, err))

	require.Len(t, m.errorLog, 1)
	require.False(t, m.errorLog[0].isError)
}

func TestModel_ResetAndQuit(t *testing.T) {
	m := initialModel("Simulator", rls.Resolution18, 10, false)
	m.stats.TotalFrames = 42

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(model)
	require.Equal(t, uint64(0), m.stats.TotalFrames)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(model)
	require.True(t, m.quitting)
	require.NotNil(t, cmd)
	require.Equal(t, "Shutting down...\n", m.View())
}

func TestModel_LogIsBounded(t *testing.T) {
	m := initialModel("Simulator", rls.Resolution18, 10, false)
	for i := 0; i < m.maxLogEntries+20; i++ {
		m.addLogEntry("event", true)
	}
	require.Len(t, m.errorLog, m.maxLogEntries)
}
