// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/encoderstat/pkg/rls"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// TUI model
type model struct {
	connInfo      string
	resolution    uint32
	statsInterval int
	showAll       bool
	stats         *rls.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	lastValid     *rls.Reading
	gauge         progress.Model
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time
type readingMsg frameEvent

func initialModel(connInfo string, resolution uint32, statsInterval int, showAll bool) model {
	return model{
		connInfo:      connInfo,
		resolution:    resolution,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         rls.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		gauge:         progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.gauge.Width = max(msg.Width-20, 10)

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case readingMsg:
		ev := frameEvent(msg)
		ev.record(m.stats)

		if ev.transportFailed() {
			m.addLogEntry(fmt.Sprintf("BUS ERROR: %v", ev.err), true)
			return m, nil
		}

		if ev.reading.Valid() {
			r := ev.reading
			m.lastValid = &r
		}

		if len(ev.validationErrors) > 0 {
			for _, err := range ev.validationErrors {
				m.addLogEntry(fmt.Sprintf("%s: %s", rls.FormatAnomalyType(err.Type), err.Message), true)
			}
		} else if m.showAll {
			m.addLogEntry(fmt.Sprintf("%s (valid)", rls.FormatDegrees(ev.reading.Degrees)), false)
		}
	}

	return m, nil
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	mode := "Errors only"
	if m.showAll {
		mode = "All frames"
	}

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("ENCODERSTAT - ERROR DETECTION"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | %d counts/rev | Mode: %s | 'r' reset, 'q' quit",
		m.connInfo, m.resolution, mode)))
	s.WriteString("\n\n")

	// Shaft position
	if m.lastValid == nil {
		s.WriteString(warningStyle.Render("⏳ Waiting for a valid frame..."))
		s.WriteString("\n\n")
	} else {
		r := m.lastValid
		shaft := strings.Builder{}
		shaft.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Angle:"), valueStyle.Render(rls.FormatDegrees(r.Degrees)),
			labelStyle.Render("Position:"), valueStyle.Render(fmt.Sprintf("%d", r.Position)),
			labelStyle.Render("Turns:"), valueStyle.Render(fmt.Sprintf("%d", r.Multiturn)),
		))
		shaft.WriteString(m.gauge.ViewAs(r.Degrees / 360.0))
		s.WriteString(boxStyle.Render(shaft.String()))
		s.WriteString("\n\n")
	}

	// Statistics
	var validPercent, errorPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
		errorPercent = float64(m.stats.ErrorCount()) * 100.0 / float64(m.stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ErrorCount(), errorPercent)),
	))

	if m.stats.CRCErrors > 0 || m.stats.StaleFrames > 0 || m.stats.TransportErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("CRC Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.CRCErrors)),
			labelStyle.Render("Stale:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.StaleFrames)),
			labelStyle.Render("Bus Errors:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.TransportErrors)),
		))
	}

	if m.stats.AnomalousValues > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s (%s: %d, %s: %d, %s: %d)\n",
			labelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousValues)),
			headerStyle.Render("out of range"), m.stats.PositionRange,
			headerStyle.Render("angle jumps"), m.stats.AngleJumps,
			headerStyle.Render("multiturn jumps"), m.stats.MultiturnJumps,
		))
	}

	errorRate := valueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	if m.stats.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		labelStyle.Render("Error Rate:"), errorRate,
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Reserve space for header, shaft and stats
	logHeight := max(m.height-18, 5)

	logContent := strings.Builder{}
	startIdx := max(len(m.errorLog)-logHeight, 0)

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
